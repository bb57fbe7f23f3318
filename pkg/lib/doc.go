// Package lib provides a Go SDK for the translation dashboard admin API
// with live synchronization.
//
// This package lets applications consume the dashboard's admin state without
// shelling out to the dashsync CLI binary. Views stay synchronized through
// the dashboard's websocket push channel with an automatic polling fallback,
// and mutations apply optimistically: the local cache updates first and the
// SDK confirms or rolls back once the server answers.
//
// # Quick Start
//
// Create a client, open a live task board and act on it:
//
//	client, err := lib.New(lib.Config{
//	    Server: "https://dash.example.com",
//	    Token:  os.Getenv("DASHSYNC_TOKEN"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	board, err := client.TaskBoard(lib.TaskBoardOpts{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer board.Close()
//
//	go board.Run(ctx) // Blocks until ctx is cancelled or Close.
//
//	board.Subscribe(func() {
//	    for _, t := range board.Tasks().Tasks {
//	        fmt.Println(t.ID, t.Status, t.Progress)
//	    }
//	})
//
//	board.Cancel(ctx, "task-123") // Optimistic, settles in background.
//
// # Views
//
// The SDK exposes two live views and a set of one-shot calls:
//
//   - [Client.TaskBoard]: every user's translation tasks with cancel, retry,
//     delete and bulk delete over a selection.
//   - [Client.AccessList]: one group's ordered provider access list with
//     grant, revoke, bulk revoke and reorder.
//   - [Client.Providers], [Client.Users], [Client.SetUserActive]: plain
//     request/response calls without synchronization.
//
// # Optimistic Mutations
//
// Action methods return quickly: the local write is already applied when
// they return nil. The settle outcome arrives through the view's
// OnNotification callback. Rolled-back mutations restore the previous state
// unless the server overwrote it first.
//
// # Errors
//
// Operations return errors matchable with [errors.Is] against the package
// sentinels: [ErrNotFound], [ErrNotValid], [ErrPolicyDenied] and
// [ErrTransient].
package lib
