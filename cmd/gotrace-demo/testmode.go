package main

import (
	"log"
	"time"

	"github.com/shortontech/gotrace"
)

// runTestMode drives a sample nested trace through the library: a
// request span containing a db-query span and an auth-check log,
// exercising span pairing, nesting, and ordinary logs in one pass.
func runTestMode() {
	log.Println("🧪 TEST MODE: generating a sample trace...")

	tr, err := gotrace.NewTracer("")
	if err != nil {
		log.Fatalf("gotrace.NewTracer: %v", err)
	}

	request := tr.Span("handle request", attrJSON(`{"route":"/checkout"}`))
	request.Enter()

	if err := tr.Log("auth check passed", nil); err != nil {
		log.Printf("Log: %v", err)
	}

	query := tr.Span("db query", attrJSON(`{"query":"select * from carts where id = $1"}`))
	query.Enter()
	time.Sleep(50 * time.Millisecond)
	query.Exit()

	if err := tr.Log("request handled", attrJSON(`{"status":200}`)); err != nil {
		log.Printf("Log: %v", err)
	}

	request.Exit()

	gotrace.Flush()
	log.Println("✅ TEST MODE: sample trace emitted")
}

func attrJSON(s string) []byte {
	return []byte(s)
}
