package main

import (
	"fmt"
	"io"

	"github.com/hightouchio/portmanager/profile"
)

func printProfile(w io.Writer, name string, p profile.Profile) {
	fmt.Fprintf(w, "  %s\n", name)
	fmt.Fprintf(w, "    Connection: %s\n", p.Address())
	if p.Key != "" {
		fmt.Fprintf(w, "    Auth: Key: %s\n", p.Key)
	} else {
		fmt.Fprintln(w, "    Auth: Password")
	}

	if len(p.Forwards) > 0 {
		fmt.Fprintln(w, "    Forwards:")
		printForwards(w, "      ", p.Forwards)
	}

	lastUsed := "never"
	if p.LastUsed != nil {
		lastUsed = p.LastUsed.Display()
	}
	fmt.Fprintf(w, "    Last used: %s\n", lastUsed)
}

func printActive(w io.Writer, conn profile.ActiveConnection) {
	fmt.Fprintf(w, "  %s\n", conn.Name)
	fmt.Fprintf(w, "    %s\n", conn.Profile.Address())
	fmt.Fprintf(w, "    Started: %s\n", conn.Started.Display())
	printForwards(w, "      ", conn.Profile.Forwards)
}

func printForwards(w io.Writer, indent string, forwards []profile.Forward) {
	for _, fwd := range forwards {
		fmt.Fprintf(w, "%s%s\n", indent, fwd)
	}
}
