// Package prompt is the terminal implementation of the orchestrator's UI:
// confirmation questions, profile selection, free-form key IDs, and the
// access key table. With assume-yes set, every confirmation resolves to its
// default and nothing is read from stdin.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/systmms/awsrotate/internal/awsgw"
	arerrors "github.com/systmms/awsrotate/internal/errors"
)

const boundMarker = " <- in credentials file"

// Terminal prompts on in and renders on out.
type Terminal struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

// NewTerminal creates a terminal UI.
func NewTerminal(in io.Reader, out io.Writer, assumeYes bool) *Terminal {
	return &Terminal{
		in:        bufio.NewReader(in),
		out:       out,
		assumeYes: assumeYes,
	}
}

// ConfirmDefaultYes asks a Y/n question. Empty input means yes.
func (t *Terminal) ConfirmDefaultYes(prompt string) (bool, error) {
	if t.assumeYes {
		return true, nil
	}

	fmt.Fprintf(t.out, "%s (Y/n): ", prompt)
	line, err := t.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "", "y", "yes":
		return true, nil
	}
	return false, nil
}

// SelectProfile shows a numbered list and reads a choice. Empty input picks
// "default", matching the behavior users expect from the AWS tooling.
func (t *Terminal) SelectProfile(profiles []string) (string, error) {
	if t.assumeYes {
		return "default", nil
	}

	fmt.Fprintf(t.out, "Found multiple profiles:\n")
	for i, profile := range profiles {
		fmt.Fprintf(t.out, "%d. %s\n", i+1, profile)
	}

	for {
		fmt.Fprintf(t.out, "Select profile to update (1-%d) or press Enter for 'default': ", len(profiles))
		line, err := t.readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			return "default", nil
		}
		choice, err := strconv.Atoi(line)
		if err != nil || choice < 1 || choice > len(profiles) {
			fmt.Fprintln(t.out, "Invalid choice, try again.")
			continue
		}
		return profiles[choice-1], nil
	}
}

// AskKeyID reads a free-form access key ID. Assume-yes has no sensible
// default for a forced decision, so it cancels.
func (t *Terminal) AskKeyID(prompt string) (string, error) {
	if t.assumeYes {
		return "", arerrors.UserCancelledError{Step: "key selection"}
	}

	fmt.Fprintf(t.out, "%s: ", prompt)
	return t.readLine()
}

// ShowKeys renders the access key table, marking the key the credentials
// file is bound to.
func (t *Terminal) ShowKeys(keys []awsgw.AccessKey, boundID string) {
	if len(keys) == 0 {
		fmt.Fprintln(t.out, "No access keys found.")
		return
	}

	fmt.Fprintf(t.out, "%-21s %-25s %s\n", "Access Key ID", "Created", "Status")
	fmt.Fprintln(t.out, strings.Repeat("-", 60))
	for _, key := range keys {
		marker := ""
		if key.ID == boundID {
			marker = boundMarker
		}
		fmt.Fprintf(t.out, "%-21s %-25s %s%s\n",
			key.ID, key.CreatedAt.Format("2006-01-02 15:04:05 MST"), key.Status, marker)
	}
}

// RevealSecret prints a one-time secret that would otherwise be lost with
// the run. The only place a secret ever reaches the terminal.
func (t *Terminal) RevealSecret(keyID, secret string) {
	fmt.Fprintln(t.out, "==================================")
	fmt.Fprintf(t.out, "Access Key ID:     %s\n", keyID)
	fmt.Fprintf(t.out, "Secret Access Key: %s\n", secret)
	fmt.Fprintln(t.out, "==================================")
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", arerrors.UserError{
			Message: "Failed to read input",
			Err:     err,
		}
	}
	return strings.TrimSpace(line), nil
}
