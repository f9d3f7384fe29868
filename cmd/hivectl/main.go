package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/hivectl/internal/client"
	"github.com/danmuck/hivectl/internal/config"
	"github.com/danmuck/hivectl/internal/hooks"
	"github.com/danmuck/hivectl/internal/logging"
	"github.com/danmuck/hivectl/internal/mailbox"
	"github.com/danmuck/hivectl/internal/registry"
	"github.com/danmuck/hivectl/internal/store"
)

const usage = `usage: hivectl [-config file] <command> [args]

commands:
  send <target> <text>            enqueue a message for target (-from required)
  inbox <session> [-since n]      read messages with id greater than n
  register <parent> <child> <dir> record a parent/child relationship
  father <child>                  print the registered parent of child
  agents                          list registered child sessions
  hook <event> <command>          register a callback hook in the settings file
  call <method> [json-params]     drive a spawned hived over the wire
`

func main() {
	cfgPath := flag.String("config", "", "hub config file (toml)")
	from := flag.String("from", "", "sender session id for send")
	since := flag.Uint64("since", 0, "cursor for inbox")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	logging.ConfigureRuntime()

	if err := run(*cfgPath, *from, *since, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "hivectl: %v\n", err)
		os.Exit(1)
	}
}

// run performs one short-lived invocation. Every command except call goes
// straight through the durable store; concurrent invocations coordinate
// only via its locks.
func run(cfgPath, from string, since uint64, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}

	cfg, err := config.LoadHubConfig(cfgPath)
	if err != nil {
		return err
	}
	st := store.New(cfg.Root)

	switch args[0] {
	case "send":
		if len(args) != 3 {
			return fmt.Errorf("usage: send <target> <text>")
		}
		sender := strings.TrimSpace(from)
		if sender == "" {
			sender = cfg.SessionID
		}
		if sender == "" {
			return fmt.Errorf("send requires -from or a configured session id")
		}
		id, err := mailbox.New(st).Append(args[1], sender, args[2])
		if err != nil {
			return err
		}
		fmt.Printf("enqueued id=%d for %s\n", id, args[1])
		return nil

	case "inbox":
		if len(args) != 2 {
			return fmt.Errorf("usage: inbox <session>")
		}
		messages, maxID, err := mailbox.New(st).ReadSince(args[1], since)
		if err != nil {
			return err
		}
		for _, msg := range messages {
			fmt.Printf("%d\t%s\t%s\n", msg.ID, msg.From, msg.Text)
		}
		fmt.Printf("since_id=%d\n", maxID)
		return nil

	case "register":
		if len(args) != 4 {
			return fmt.Errorf("usage: register <parent> <child> <workdir>")
		}
		return registry.New(st).SetChild(args[1], args[2], args[3])

	case "father":
		if len(args) != 2 {
			return fmt.Errorf("usage: father <child>")
		}
		father, ok, err := registry.New(st).Father(args[1])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no parent registered for %s", args[1])
		}
		fmt.Println(father)
		return nil

	case "agents":
		children, err := registry.New(st).Children()
		if err != nil {
			return err
		}
		for _, child := range children {
			fmt.Printf("%s\tfather=%s\tworkdir=%s\n", child.SessionID, child.Father, child.Workdir)
		}
		return nil

	case "hook":
		if len(args) != 3 {
			return fmt.Errorf("usage: hook <event> <command>")
		}
		if strings.TrimSpace(cfg.SettingsPath) == "" {
			return fmt.Errorf("hook requires settings_path in the hub config")
		}
		hook, err := hooks.Install(st, cfg.SettingsPath, args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("installed %s hook marker=%s\n", args[1], hook.Marker)
		return nil

	case "call":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: call <method> [json-params]")
		}
		return callDaemon(cfgPath, args)

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

// callDaemon spawns a hived, issues one request over its stdio, and prints
// the raw result.
func callDaemon(cfgPath string, args []string) error {
	var params map[string]any
	if len(args) == 3 {
		if err := json.Unmarshal([]byte(args[2]), &params); err != nil {
			return fmt.Errorf("params must be a JSON object: %w", err)
		}
	}

	daemonArgs := []string{}
	if strings.TrimSpace(cfgPath) != "" {
		daemonArgs = append(daemonArgs, "-config", cfgPath)
	}
	proc, err := client.StartSubprocess("hived", daemonArgs...)
	if err != nil {
		return err
	}
	defer proc.Close()

	result, err := proc.Client.Call(args[1], params)
	if err != nil {
		return err
	}
	fmt.Println(string(result))
	return nil
}
