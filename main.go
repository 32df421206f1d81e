package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/changebag/causeconnect-api/api/handlers"

	"go.uber.org/zap"

	"github.com/changebag/causeconnect-api/config"
	"github.com/changebag/causeconnect-api/logging"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	// production logger for the running service; tests keep the example one
	logger := logging.New()
	zap.ReplaceGlobals(logger.Desugar())

	if err := a.Initialize(); err != nil { //initialize database, router and scheduler
		log.Fatal(err)
	}

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	zap.S().Infow("causeconnect-api is up and running",
		"port", port,
		"url", baseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
