package client

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams.
var (
	promptIn  io.Reader = os.Stdin
	promptOut io.Writer = os.Stderr

	readPassword = func() ([]byte, error) {
		return term.ReadPassword(int(os.Stdin.Fd()))
	}
)

func PromptUsername() (string, error) {
	fmt.Fprint(promptOut, "Enter your username: ")
	line, err := bufio.NewReader(promptIn).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func PromptPassword() (string, error) {
	fmt.Fprint(promptOut, "Enter your password: ")
	pass, err := readPassword()
	fmt.Fprintln(promptOut)
	if err != nil {
		return "", err
	}
	return string(pass), nil
}

// ConfirmYn asks with a default of yes: anything but an explicit N
// continues.
func ConfirmYn(prompt string) bool {
	return confirm(prompt, true)
}

// ConfirmyN asks with a default of no: only an explicit Y continues.
func ConfirmyN(prompt string) bool {
	return confirm(prompt, false)
}

func confirm(prompt string, defaultYes bool) bool {
	choices := "(y/N)"
	if defaultYes {
		choices = "(Y/n)"
	}
	if prompt != "" {
		prompt += " "
	}
	fmt.Fprintf(promptOut, "%sContinue? %s: ", prompt, choices)
	line, _ := bufio.NewReader(promptIn).ReadString('\n')
	choice := strings.ToUpper(strings.TrimSpace(line))
	if defaultYes {
		return choice != "N"
	}
	return choice == "Y"
}
