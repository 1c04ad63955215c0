// Command issuetoken mints an access token for a user id, signed with the
// server secret. It reads the same config file and flags as the server.
//
//	issuetoken -c server.yaml -user 42
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/moviekeeper/internal/flagx"
	"github.com/dmitrijs2005/moviekeeper/internal/server/auth"
	"github.com/dmitrijs2005/moviekeeper/internal/server/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var userID string
	fs := flag.NewFlagSet("issuetoken", flag.ExitOnError)
	fs.StringVar(&userID, "user", "", "user id (token subject)")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-user"}))

	if userID == "" {
		log.Fatal("-user is required")
	}

	token, err := auth.GenerateToken(userID, []byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Println(token)
}
