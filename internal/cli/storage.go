package cli

import (
	"context"
	"fmt"
	"strings"
)

// Documents prints every stored key with its size.
func (a *App) Documents(ctx context.Context) error {
	docs, err := a.storage.Documents(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(a.out, "No stored documents")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(a.out, "%-16s %d bytes\n", d.Key, d.Size)
	}
	return nil
}

// Reset asks for confirmation, wipes the store and starts over as on a
// first launch. The current session ends.
func (a *App) Reset(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Type 'yes' to erase all stored data", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), "yes") {
		fmt.Fprintln(a.out, "Reset cancelled")
		return nil
	}

	if err := a.storage.Reset(ctx); err != nil {
		return err
	}
	if err := a.identity.LogOut(ctx); err != nil {
		a.log.Warn(ctx, "logout after reset failed", "error", err)
	}
	if _, err := a.vehicles.ListAll(ctx); err != nil {
		a.log.Warn(ctx, "working set not cleared", "error", err)
	}

	fmt.Fprintln(a.out, "Storage cleared, you have been logged out")
	return a.firstLaunch(ctx)
}
