package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dekarrin/stlc/internal/registry"
	"github.com/spf13/pflag"
)

// runRegistry implements "stc registry <subcommand>": init/publish/verify/
// list/download/profile against a local content store rooted at --store.
// Each subcommand opens its own store and closes it before returning, since
// these are one-shot CLI invocations rather than a long-lived server.
func runRegistry(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: registry requires a subcommand: init, publish, verify, list, download, profile")
		return ExitInternal
	}
	sub, rest := args[0], args[1:]

	fs := pflag.NewFlagSet("registry "+sub, pflag.ContinueOnError)
	store := fs.StringP("store", "s", "./registry-data", "Directory holding the registry's SQLite content store")
	ci := fs.BoolP("ci", "", false, "Emit a single-line JSON result instead of human-readable output")

	switch sub {
	case "init":
		return registryInit(fs, store, ci, rest)
	case "publish":
		return registryPublish(fs, store, ci, rest)
	case "verify":
		return registryVerify(fs, store, ci, rest)
	case "list":
		return registryList(fs, store, ci, rest)
	case "download":
		return registryDownload(fs, store, ci, rest)
	case "profile":
		return registryProfile(fs, store, ci, rest)
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown registry subcommand %q\n", sub)
		return ExitInternal
	}
}

func openStore(dir string) (registry.Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return registry.NewSQLiteStore(dir)
}

func registryInit(fs *pflag.FlagSet, storeDir, ci *bool, args []string) int {
	username := fs.StringP("username", "u", "", "Publisher username to create")
	password := fs.StringP("password", "w", "", "Publisher password")
	if err := fs.Parse(args); err != nil {
		return ExitInternal
	}
	st, err := openStore(*storeDir)
	if err != nil {
		return report(*ci, "registry init", *storeDir, ExitInternal, err.Error())
	}
	defer st.Close()

	if *username == "" {
		return report(*ci, "registry init", *storeDir, ExitConfigError, "--username is required")
	}
	if _, err := st.CreatePublisher(context.Background(), *username, *password); err != nil {
		return report(*ci, "registry init", *storeDir, ExitInternal, err.Error())
	}
	return report(*ci, "registry init", *storeDir, ExitSuccess, fmt.Sprintf("initialized registry at %s with publisher %q", *storeDir, *username))
}

func registryPublish(fs *pflag.FlagSet, storeDir, ci *bool, args []string) int {
	name := fs.StringP("name", "n", "", "Package name")
	version := fs.StringP("version", "r", "", "Package version")
	username := fs.StringP("username", "u", "", "Publisher username")
	password := fs.StringP("password", "w", "", "Publisher password")
	file := fs.StringP("file", "f", "", "Path to the package content to publish")
	if err := fs.Parse(args); err != nil {
		return ExitInternal
	}
	st, err := openStore(*storeDir)
	if err != nil {
		return report(*ci, "registry publish", *storeDir, ExitInternal, err.Error())
	}
	defer st.Close()

	ctx := context.Background()
	pub, err := st.Authenticate(ctx, *username, *password)
	if err != nil {
		return report(*ci, "registry publish", *storeDir, ExitConfigError, err.Error())
	}
	blob, err := os.ReadFile(*file)
	if err != nil {
		return report(*ci, "registry publish", *storeDir, ExitConfigError, err.Error())
	}
	pkg, err := st.Publish(ctx, registry.Package{Name: *name, Version: *version, Publisher: pub.Username}, blob)
	if err != nil {
		return report(*ci, "registry publish", *storeDir, ExitInternal, err.Error())
	}
	return report(*ci, "registry publish", *storeDir, ExitSuccess, fmt.Sprintf("published %s@%s (%d bytes, hash %s)", pkg.Name, pkg.Version, pkg.Size, pkg.ContentHash))
}

func registryVerify(fs *pflag.FlagSet, storeDir, ci *bool, args []string) int {
	name := fs.StringP("name", "n", "", "Package name")
	version := fs.StringP("version", "r", "", "Package version")
	if err := fs.Parse(args); err != nil {
		return ExitInternal
	}
	st, err := openStore(*storeDir)
	if err != nil {
		return report(*ci, "registry verify", *storeDir, ExitInternal, err.Error())
	}
	defer st.Close()

	if err := st.Verify(context.Background(), *name, *version); err != nil {
		if errors.Is(err, registry.ErrHashMismatch) {
			return report(*ci, "registry verify", *storeDir, ExitBuildFailed, err.Error())
		}
		return report(*ci, "registry verify", *storeDir, ExitConfigError, err.Error())
	}
	return report(*ci, "registry verify", *storeDir, ExitSuccess, fmt.Sprintf("%s@%s: content hash OK", *name, *version))
}

func registryList(fs *pflag.FlagSet, storeDir, ci *bool, args []string) int {
	name := fs.StringP("name", "n", "", "Package name (empty lists every package)")
	if err := fs.Parse(args); err != nil {
		return ExitInternal
	}
	st, err := openStore(*storeDir)
	if err != nil {
		return report(*ci, "registry list", *storeDir, ExitInternal, err.Error())
	}
	defer st.Close()

	pkgs, err := st.List(context.Background(), *name)
	if err != nil {
		return report(*ci, "registry list", *storeDir, ExitInternal, err.Error())
	}
	var human string
	for _, p := range pkgs {
		human += fmt.Sprintf("%s@%s\t%d bytes\t%s\t%s\n", p.Name, p.Version, p.Size, p.Publisher, p.PublishedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	if human == "" {
		human = "no packages published"
	}
	return report(*ci, "registry list", *storeDir, ExitSuccess, human)
}

func registryDownload(fs *pflag.FlagSet, storeDir, ci *bool, args []string) int {
	name := fs.StringP("name", "n", "", "Package name")
	version := fs.StringP("version", "r", "", "Package version")
	out := fs.StringP("out", "o", "", "Path to write the downloaded content to")
	if err := fs.Parse(args); err != nil {
		return ExitInternal
	}
	st, err := openStore(*storeDir)
	if err != nil {
		return report(*ci, "registry download", *storeDir, ExitInternal, err.Error())
	}
	defer st.Close()

	pkg, blob, err := st.Get(context.Background(), *name, *version)
	if err != nil {
		return report(*ci, "registry download", *storeDir, ExitConfigError, err.Error())
	}
	dest := *out
	if dest == "" {
		dest = fmt.Sprintf("%s-%s.pkg", pkg.Name, pkg.Version)
	}
	if err := os.WriteFile(dest, blob, 0644); err != nil {
		return report(*ci, "registry download", *storeDir, ExitInternal, err.Error())
	}
	return report(*ci, "registry download", *storeDir, ExitSuccess, fmt.Sprintf("downloaded %s@%s to %s", pkg.Name, pkg.Version, dest))
}

func registryProfile(fs *pflag.FlagSet, storeDir, ci *bool, args []string) int {
	username := fs.StringP("username", "u", "", "Publisher username")
	if err := fs.Parse(args); err != nil {
		return ExitInternal
	}
	st, err := openStore(*storeDir)
	if err != nil {
		return report(*ci, "registry profile", *storeDir, ExitInternal, err.Error())
	}
	defer st.Close()

	pub, err := st.Profile(context.Background(), *username)
	if err != nil {
		return report(*ci, "registry profile", *storeDir, ExitConfigError, err.Error())
	}
	return report(*ci, "registry profile", *storeDir, ExitSuccess, fmt.Sprintf("%s, created %s", pub.Username, pub.Created.Format("2006-01-02")))
}
