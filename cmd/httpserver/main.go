// Command httpserver demonstrates the core framework: a router wired
// with exact and partial routes, served over plain TCP and fronted by
// a TCP→HTTPS redirect responder on a second port.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/minum-go/minum/internal/clock"
	"github.com/minum-go/minum/internal/config"
	"github.com/minum-go/minum/internal/connhandler"
	"github.com/minum-go/minum/internal/request"
	"github.com/minum-go/minum/internal/response"
	"github.com/minum-go/minum/internal/router"
	"github.com/minum-go/minum/internal/server"
	"github.com/minum-go/minum/internal/startline"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	cfg := config.Default()
	log.SetLevel(cfg.LogLevel)

	rt := router.New()

	rt.Register(startline.GET, "add_two_numbers", func(req *request.Request) *response.Response {
		a := atoiOr0(req.StartLine.Path.QueryPairs["a"])
		b := atoiOr0(req.StartLine.Path.QueryPairs["b"])
		return response.HTMLOk(fmt.Sprintf("%d", a+b))
	})

	rt.Register(startline.GET, "some_endpoint", func(req *request.Request) *response.Response {
		return response.HTMLOk("ok")
	})

	rt.Register(startline.POST, "submit_form", func(req *request.Request) *response.Response {
		return response.HTMLOk(req.Body.PartAsString("value_a"))
	})

	rt.RegisterPartialPath(startline.GET, ".well-known/acme-challenge", func(req *request.Request) *response.Response {
		return response.HTMLOk("value was " + req.StartLine.Path.IsolatedPath)
	})

	deps := connhandler.Deps{Router: rt, Config: cfg, Clock: clock.System{}, Log: log}

	httpSrv, err := server.Start(
		fmt.Sprintf(":%d", cfg.NonSSLServerPort),
		server.HTTPHandler(deps),
		8,
		log,
	)
	if err != nil {
		log.Fatalf("error starting http server: %v", err)
	}
	defer httpSrv.Close()

	redirectSrv, err := server.Start(
		fmt.Sprintf(":%d", cfg.SSLServerPort-1),
		server.RedirectHandler(deps),
		2,
		log,
	)
	if err != nil {
		log.Fatalf("error starting redirect server: %v", err)
	}
	defer redirectSrv.Close()

	log.Infof("serving on %s:%d (redirect on %d)", httpSrv.Host(), httpSrv.Port(), redirectSrv.Port())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("server gracefully stopped")
}

func atoiOr0(s string) int {
	n := 0
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}
