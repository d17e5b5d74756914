package model

// ClientData is the metadata blob the client sends alongside file parts
// and records into .commit markers. Field names are part of the wire
// protocol shared with the server.
type ClientData struct {
	CurrentBranch    string `json:"current_branch"`
	CurrentSHAHash   string `json:"current_sha_hash"`
	CurrentCommitMsg string `json:"current_commit_msg"`
	VersionType      string `json:"version_type"`
}
