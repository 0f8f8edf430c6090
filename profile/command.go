package profile

import (
	"os"
	"strconv"

	"github.com/mitchellh/go-homedir"
)

// ClientProgram is the first token of every built command.
const ClientProgram = "ssh"

// BuildCommand maps a profile to the argument vector for the ssh client.
// The only thing it reads is whether the key file exists; a key that cannot
// be found is left out rather than reported.
func BuildCommand(p Profile) []string {
	return buildCommand(p, fileExists)
}

func buildCommand(p Profile, exists func(string) bool) []string {
	cmd := []string{ClientProgram}

	if p.Port != DefaultPort {
		cmd = append(cmd, "-p", strconv.Itoa(p.Port))
	}

	if p.Key != "" {
		if keyPath := ExpandPath(p.Key); exists(keyPath) {
			cmd = append(cmd, "-i", keyPath)
		}
	}

	for _, fwd := range p.Forwards {
		// anything other than local is built as remote
		flag := "-R"
		if fwd.Direction == Local {
			flag = "-L"
		}
		cmd = append(cmd, flag, fwd.Spec())
	}

	return append(cmd, p.Destination())
}

// ExpandPath expands a leading ~ and returns the input unchanged if the home
// directory cannot be resolved.
func ExpandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
