// Command operatortoken prints a bearer token for the operator API, signed with the secret from config.yml.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rocketscienceinc/tictactoe-relay/internal/config"
	"github.com/rocketscienceinc/tictactoe-relay/internal/service"
)

func main() {
	path := flag.String("config", "config.yml", "config file")
	subject := flag.String("subject", "operator", "who the token is issued to")
	flag.Parse()

	conf, err := config.Load(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	auth, err := service.NewAuthService(conf.JWTSecretKey, conf.TokenTTL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	token, err := auth.GenerateToken(*subject)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(token)
}
