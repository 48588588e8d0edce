package main

import (
    "os"

    "creditdesk/cmd/creditctl/commands"
)

func main() {
    if err := commands.Execute(); err != nil {
        os.Exit(1)
    }
}
