// Command up-demo runs a self-contained uProtocol round trip over the
// in-process overlay: a publisher and subscriber exchanging topic
// events, then an RPC client calling an RPC server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	uptransport "github.com/ehrlich-b/go-uptransport"
	"github.com/ehrlich-b/go-uptransport/internal/logging"
	"github.com/ehrlich-b/go-uptransport/overlay"
	"github.com/ehrlich-b/go-uptransport/uproto"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to an overlay YAML config (optional)")
		namespace  = flag.String("namespace", "up-demo", "Overlay namespace")
		count      = flag.Int("count", 3, "Number of publishes and RPC calls")
		verbose    = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	cfg := overlay.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = overlay.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Invalid config '%s': %v", *configPath, err)
		}
	}
	if *namespace != "" {
		cfg.Namespace = *namespace
	}

	// Set up logging
	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	ctx := context.Background()

	publisher := mustTransport(cfg, "//demo-pub/1/1/0")
	defer publisher.Close()
	subscriber := mustTransport(cfg, "//demo-sub/9/1/0")
	defer subscriber.Close()
	server := mustTransport(cfg, "//demo-srv/4/1/0")
	defer server.Close()
	client := mustTransport(cfg, "//demo-cli/12/1/0")
	defer client.Close()

	// Pub/sub leg.
	topic := uproto.MustParseURI("//demo-pub/1/1/8001")
	events := make(chan *uproto.UMessage, *count)
	onEvent := uproto.ListenerFunc(func(msg *uproto.UMessage) { events <- msg })
	if err := subscriber.RegisterListener(ctx, topic, onEvent); err != nil {
		log.Fatalf("register subscriber: %v", err)
	}

	for i := 0; i < *count; i++ {
		payload := []byte(fmt.Sprintf("event %d", i))
		msg := uproto.NewPublishMessage(topic, payload, uproto.PayloadFormatText)
		if err := publisher.Send(ctx, msg); err != nil {
			log.Fatalf("publish: %v", err)
		}
		select {
		case got := <-events:
			fmt.Printf("subscriber received %q on %s\n", got.Payload, got.Attributes.Source)
		case <-time.After(2 * time.Second):
			log.Fatal("publish was not delivered")
		}
	}

	// RPC leg: the server answers every request with the current time.
	method := uproto.MustParseURI("//demo-srv/4/1/3")
	handler := uproto.ListenerFunc(func(request *uproto.UMessage) {
		logger.Debug("request received", "payload", string(request.Payload))
		now := time.Now().UTC().Format(time.RFC3339Nano)
		response := uproto.NewResponseMessage(request, []byte(now), uproto.PayloadFormatText)
		if err := server.Send(ctx, response); err != nil {
			logger.Error("unable to send response", "error", err)
		}
	})
	if err := server.RegisterListener(ctx, uproto.Any(), handler, uptransport.WithSink(method)); err != nil {
		log.Fatalf("register rpc handler: %v", err)
	}

	clientSource := client.GetSource()
	responses := make(chan *uproto.UMessage, *count)
	onResponse := uproto.ListenerFunc(func(msg *uproto.UMessage) { responses <- msg })
	if err := client.RegisterListener(ctx, method, onResponse, uptransport.WithSink(clientSource)); err != nil {
		log.Fatalf("register response listener: %v", err)
	}

	for i := 0; i < *count; i++ {
		request := uproto.NewRequestMessage(clientSource, method, []byte("GetCurrentTime"), 2000, uproto.PayloadFormatText)
		if err := client.Send(ctx, request); err != nil {
			log.Fatalf("send request: %v", err)
		}
		select {
		case got := <-responses:
			fmt.Printf("rpc response %q (reqid %s)\n", got.Payload, got.Attributes.ReqID)
		case <-time.After(2 * time.Second):
			log.Fatal("rpc response did not arrive")
		}
	}

	snap := publisher.MetricsSnapshot()
	fmt.Printf("\npublisher sent %d messages (%d bytes)\n", snap.TotalSent, snap.BytesSent)
	snap = client.MetricsSnapshot()
	fmt.Printf("client sent %d requests, received %d responses\n", snap.RequestSent, snap.ResponseReceived)
}

func mustTransport(cfg overlay.Config, source string) *uptransport.Transport {
	t, err := uptransport.New(cfg, uproto.MustParseURI(source), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to open transport for %s: %v\n", source, err)
		os.Exit(1)
	}
	return t
}
