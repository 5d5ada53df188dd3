package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	LogDream(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Archive(ctx context.Context, args []string, archived bool) error
	Delete(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Feed(ctx context.Context, args []string) error
	Like(ctx context.Context, args []string) error
	Watch(ctx context.Context, args []string) error
	Streak(ctx context.Context) error
	Report(ctx context.Context, args []string) error

	Search(ctx context.Context, args []string) error
	Profile(ctx context.Context, args []string) error
	Friend(ctx context.Context, action string, args []string) error
	Friends(ctx context.Context) error
	Contacts(ctx context.Context) error

	SetUsername(ctx context.Context, args []string) error
	Describe(ctx context.Context) error
	Phone(ctx context.Context, args []string) error
	Picture(ctx context.Context, args []string) error
	Setting(ctx context.Context, args []string) error
	DeleteAccount(ctx context.Context) error
}

var errUsage = errors.New("usage")

const (
	helpSignedOut = "Available commands: register, login, log, (l)ist, show, edit, archive, unarchive, delete, streak, set, exit"
	helpSignedIn  = "Available commands: log, (l)ist, show, edit, archive, unarchive, delete, sync, feed, like, watch, streak, report,\n" +
		"  search, profile, request, accept, decline, block, unblock, friends, contacts,\n" +
		"  username, describe, phone, picture, set, deleteaccount, logout, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit" and
// dispatches them to a. Errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("dreams %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cerr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "register":
			cerr = a.Register(ctx)
		case "login":
			cerr = a.Login(ctx)
		case "logout":
			cerr = a.Logout(ctx)

		case "log":
			cerr = a.LogDream(ctx)
		case "l", "list":
			cerr = a.List(ctx)
		case "show":
			cerr = a.Show(ctx, args)
		case "edit":
			cerr = a.Edit(ctx, args)
		case "archive":
			cerr = a.Archive(ctx, args, true)
		case "unarchive":
			cerr = a.Archive(ctx, args, false)
		case "delete":
			cerr = a.Delete(ctx, args)
		case "sync":
			cerr = a.Sync(ctx)
		case "feed":
			cerr = a.Feed(ctx, args)
		case "like":
			cerr = a.Like(ctx, args)
		case "watch":
			cerr = a.Watch(ctx, args)
		case "streak":
			cerr = a.Streak(ctx)
		case "report":
			cerr = a.Report(ctx, args)

		case "search":
			cerr = a.Search(ctx, args)
		case "profile":
			cerr = a.Profile(ctx, args)
		case "request", "accept", "decline", "block", "unblock":
			cerr = a.Friend(ctx, cmd, args)
		case "friends":
			cerr = a.Friends(ctx)
		case "contacts":
			cerr = a.Contacts(ctx)

		case "username":
			cerr = a.SetUsername(ctx, args)
		case "describe":
			cerr = a.Describe(ctx)
		case "phone":
			cerr = a.Phone(ctx, args)
		case "picture":
			cerr = a.Picture(ctx, args)
		case "set":
			cerr = a.Setting(ctx, args)
		case "deleteaccount":
			cerr = a.DeleteAccount(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cerr != nil {
			printlnFn("Error:", cerr)
		}
		if err != nil {
			return
		}
	}
}
