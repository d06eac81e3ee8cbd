package main

import (
	"fmt"

	"github.com/mb0/plotl/scl"
)

func reg(args []string) error {
	ver := scl.Std.Version()
	fmt.Printf("%s %s\n", ver.Name, ver.Hash)
	for _, v := range scl.Std.List {
		fmt.Printf("   %-10s %s %s/%s %s\n", v.Key, v.Version().Hash[:12],
			v.Dom, v.Rng, v.Model)
	}
	return nil
}
