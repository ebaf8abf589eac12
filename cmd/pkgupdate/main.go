package main

import (
	"github.com/agentpkg/pkgupdate/pkg/cmd"
	_ "github.com/agentpkg/pkgupdate/pkg/updater/adapters"
)

func main() {
	cmd.Execute()
}
