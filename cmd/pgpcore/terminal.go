// This is free and unencumbered software released into the public domain.

package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/term"
)

// terminalPassphrase prompts for a passphrase directly on the
// controlling terminal, repeating the prompt (and requiring the
// entries to match) if repeat > 1. Grounded on helm's
// term.ReadPassword usage in pkg/action/repo_add.go, generalized to
// the teacher's repeat-and-confirm policy.
func terminalPassphrase(repeat int) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if repeat < 1 {
		repeat = 1
	}

	fmt.Fprint(os.Stderr, "passphrase: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}

	for i := 1; i < repeat; i++ {
		fmt.Fprint(os.Stderr, "passphrase (again): ")
		again, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(first, again) {
			return nil, fmt.Errorf("passphrases do not match")
		}
	}
	return first, nil
}

// pinentryPassphrase drives an external pinentry(1)-compatible program
// over its line-oriented Assuan protocol to collect (and optionally
// confirm) a passphrase, matching the teacher's --pinentry flag.
func pinentryPassphrase(program string, repeat int) ([]byte, error) {
	if repeat < 1 {
		repeat = 1
	}
	var first []byte
	for i := 0; i < repeat; i++ {
		prompt := "Enter passphrase"
		if i > 0 {
			prompt = "Confirm passphrase"
		}
		p, err := runPinentry(program, prompt)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			first = p
		} else if !bytes.Equal(first, p) {
			return nil, fmt.Errorf("passphrases do not match")
		}
	}
	return first, nil
}

func runPinentry(program, prompt string) ([]byte, error) {
	cmd := exec.Command(program)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	fmt.Fprintf(stdin, "SETPROMPT %s\n", prompt)
	fmt.Fprint(stdin, "GETPIN\n")
	stdin.Close()

	var out bytes.Buffer
	if _, err := out.ReadFrom(stdout); err != nil {
		cmd.Wait()
		return nil, err
	}
	if err := cmd.Wait(); err != nil {
		return nil, err
	}

	for _, line := range bytes.Split(out.Bytes(), []byte("\n")) {
		if bytes.HasPrefix(line, []byte("D ")) {
			return line[2:], nil
		}
	}
	return nil, fmt.Errorf("pinentry: no passphrase returned")
}
