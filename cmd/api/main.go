package main

import (
	"context"
	"log"

	"github.com/19jem-ila/ecommerce-checkout/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("checkout API failed: %v", err)
	}
}
