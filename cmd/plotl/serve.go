package main

import (
	"fmt"
	"net/http"

	"github.com/mb0/plotl/hub"
	"github.com/mb0/plotl/hub/wshub"
	"github.com/mb0/plotl/srv"
)

func serve(args []string) error {
	h := hub.NewHub()
	s := srv.NewServer(h, nil, nil)
	go h.Run(s)
	mux := http.NewServeMux()
	mux.Handle("/hub", wshub.Serve(h, s.Log))
	fmt.Printf("listening on %s\n", *addrFlag)
	return http.ListenAndServe(*addrFlag, mux)
}
