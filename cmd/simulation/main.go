package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"qbwc-sync-be/internal/config"
	"qbwc-sync-be/pkg/events"
	pktNats "qbwc-sync-be/pkg/nats"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	endpoint := flag.String("endpoint", "http://localhost:"+cfg.App.Port+cfg.WebConnector.EndpointPath, "Web Connector SOAP endpoint")
	username := flag.String("user", "sync-DEMO", "Web Connector user name")
	password := flag.String("password", cfg.WebConnector.SharedSecret, "shared secret")
	watch := flag.Bool("watch", false, "print session events from NATS while running")
	flag.Parse()

	title := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed, color.Bold)

	title.Println("=== Web Connector Simulation ===")
	fmt.Printf("Endpoint: %s\nUser:     %s\n\n", *endpoint, *username)

	if *watch && cfg.App.NatsURL != "" {
		sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			warn.Printf("NATS watch disabled: %v\n", err)
		} else {
			defer sub.Close()
			for _, typ := range []string{events.TypeSyncSessionStarted, events.TypeSyncSessionFinished} {
				err := sub.Subscribe(context.Background(), typ, "", func(_ context.Context, e events.Event) error {
					color.Magenta("  [event] %s %v", e.EventType(), e.Payload())
					return nil
				})
				if err != nil {
					warn.Printf("NATS subscribe %s: %v\n", typ, err)
				}
			}
		}
	}

	a := newAgent(*endpoint)

	res, err := a.call("serverVersion")
	if err != nil {
		fail.Printf("serverVersion: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Server version: %s\n", res.text())

	if _, err := a.call("clientVersion", "strVersion", "2.3.0.215"); err != nil {
		fail.Printf("clientVersion: %v\n", err)
		os.Exit(1)
	}

	res, err = a.call("authenticate", "strUserName", *username, "strPassword", *password)
	if err != nil || len(res.values()) != 2 {
		fail.Printf("authenticate failed: %v\n", err)
		os.Exit(1)
	}
	ticket, status := res.values()[0], res.values()[1]
	switch status {
	case "nvu":
		fail.Println("Invalid credentials")
		os.Exit(1)
	case "none":
		warn.Println("No work queued for this company")
		return
	}
	short := ticket
	if len(short) > 8 {
		short = short[:8]
	}
	ok.Printf("Authenticated, ticket %s... (company file %q)\n", short, status)

	for {
		res, err := a.call("sendRequestXML",
			"ticket", ticket, "strHCPResponse", "", "strCompanyFileName", status,
			"qbXMLCountry", "US", "qbXMLMajorVers", "13", "qbXMLMinorVers", "0")
		if err != nil {
			fail.Printf("sendRequestXML: %v\n", err)
			break
		}
		request := res.text()
		if request == "" {
			break
		}

		response, tag := a.respond(request)
		fmt.Printf("  -> %-24s", tag+"Rq")

		res, err = a.call("receiveResponseXML", "ticket", ticket, "response", response, "hresult", "", "message", "")
		if err != nil {
			fail.Printf("receiveResponseXML: %v\n", err)
			break
		}
		percent := res.number()
		if percent < 0 {
			last, _ := a.call("getLastError", "ticket", ticket)
			if last != nil {
				fail.Printf(" error: %s\n", last.text())
			}
			break
		}
		ok.Printf(" %3d%%\n", percent)
		if percent >= 100 {
			break
		}
	}

	if res, err := a.call("closeConnection", "ticket", ticket); err == nil {
		title.Printf("\nClosed: %s\n", res.text())
	}
	if *watch {
		// Give the finished event time to arrive.
		time.Sleep(2 * time.Second)
	}
}
