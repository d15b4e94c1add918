// Command snipd is the sync peer that receives change sets pushed by snip.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/snip/internal/buildinfo"
	"github.com/dmitrijs2005/snip/internal/server"
	"github.com/dmitrijs2005/snip/internal/server/auth"
	"github.com/dmitrijs2005/snip/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	if cfg.IssueFor != "" {
		token, err := auth.GenerateToken(cfg.IssueFor, []byte(cfg.SecretKey), cfg.TokenValidity)
		if err != nil {
			log.Fatalf("issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
