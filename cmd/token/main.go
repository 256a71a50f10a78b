// Command token issues a bearer token for the upload endpoint when auth is
// enabled.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"gopherai-pdfqa/internal/config"
	"gopherai-pdfqa/internal/pkg/jwtutil"
)

func main() {
	subject := flag.String("subject", "", "Client the token is issued to")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "usage: token -subject name [-ttl 24h]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}
	token, err := jwtutil.GenerateToken(cfg.Auth.JWTSecret, *subject, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("issue token failed")
	}
	fmt.Println(token)
}
