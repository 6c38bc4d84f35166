// Command nscache inspects and maintains an nscache namespace stored in
// SQLite or Redis.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	ctx := context.Background()
	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
