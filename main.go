package main

import (
	"log"

	"github.com/avoran/jobscout/cmd"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
