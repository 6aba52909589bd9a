// Command devtoken prints a signed access token for local testing.  In
// production tokens come from the identity provider; the server only
// verifies them with JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/event-ticketing/internal/utils"
)

func main() {
	_ = godotenv.Load()

	sub := flag.String("sub", "", "buyer id to put in the sub claim")
	role := flag.String("role", "MEMBER", "role claim (MEMBER or ADMIN)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	at, err := utils.NewAccessToken(secret, *sub, *role, *ttl)
	if err != nil {
		logrus.WithError(err).Fatal("cannot sign token")
	}
	fmt.Println(at.Token)
}
