package model

type Document struct {
	ID    string `json:"doc_id"`
	Name  string `json:"name"`
	Ctime int64  `json:"ctime"`
}

// DocumentVersion is one entry of a document version series. Major/Minor
// carry the numeric label parts; EditDate is unix seconds.
type DocumentVersion struct {
	ID               string `json:"doc_ver_id"`
	DocumentID       string `json:"doc_id"`
	Major            int    `json:"major"`
	Minor            int    `json:"minor"`
	FileName         string `json:"file_name"`
	FileKey          string `json:"file_key"`
	CheckedInBy      string `json:"checked_in_by"`
	CheckedInComment string `json:"checked_in_comment"`
	EditDate         int64  `json:"edit_date"`
	ContentURL       string `json:"content_url"`
}

func (v *DocumentVersion) Label() string {
	return VersionLabel(v.Major, v.Minor)
}

type Checkout struct {
	DocumentID   string `json:"doc_id"`
	CheckedOutBy string `json:"checked_out_by"`
	Ctime        int64  `json:"ctime"`
}
