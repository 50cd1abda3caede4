// Command mango-shell is an interactive shell for a document store.
// Documents and criteria are entered as extended JSON.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nasdf/mango"
	"github.com/nasdf/mango/remote"
	"github.com/nasdf/mango/store"
	"github.com/nasdf/mango/store/memory"
	"github.com/nasdf/mango/store/sqlite"
	"github.com/nasdf/mango/wire"

	"github.com/peterh/liner"
	"github.com/sanity-io/litter"
)

const usage = `commands:
  use <db>                        switch database
  insert <collection> <doc>       save a document
  find <collection> [criteria]    list matching documents
  findone <collection> [criteria] show the first matching document
  count <collection> [criteria]   count matching documents
  delete <collection> [criteria]  remove matching documents
  exit                            quit the shell`

func main() {
	var (
		addr       string
		engineName string
		dataPath   string
		dbName     string
	)
	flag.StringVar(&addr, "addr", "", "address of a mango-serve instance")
	flag.StringVar(&engineName, "engine", "memory", "local engine when no address is given: memory or sqlite")
	flag.StringVar(&dataPath, "data", "mango.db", "path to the sqlite database file")
	flag.StringVar(&dbName, "db", "test", "database name")
	flag.Parse()

	st, err := openStore(addr, engineName, dataPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	client := mango.Open(st, mango.DefaultConfig())
	defer client.Close()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	db := client.Database(dbName)
	for {
		input, err := line.Prompt(db.Name() + "> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if input == "exit" {
			return
		}
		db, err = run(db, client, input)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func openStore(addr, engineName, dataPath string) (store.Store, error) {
	if addr != "" {
		return remote.Dial(addr)
	}
	switch engineName {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.Open(dataPath)
	default:
		return nil, fmt.Errorf("unknown engine: %s", engineName)
	}
}

func run(db *mango.Database, client *mango.Client, input string) (*mango.Database, error) {
	ctx := context.Background()
	cmd, rest, _ := strings.Cut(input, " ")

	switch cmd {
	case "help":
		fmt.Println(usage)
		return db, nil

	case "use":
		name := strings.TrimSpace(rest)
		if name == "" {
			return db, errors.New("usage: use <db>")
		}
		return client.Database(name), nil

	case "insert":
		name, body, err := splitArgs(rest)
		if err != nil || body == "" {
			return db, errors.New("usage: insert <collection> <doc>")
		}
		doc, err := parseRecord(body)
		if err != nil {
			return db, err
		}
		saved, err := db.Collection(name).Save(ctx, doc)
		if err != nil {
			return db, err
		}
		fmt.Print(litter.Sdump(saved), "\n")
		return db, nil

	case "find":
		name, body, err := splitArgs(rest)
		if err != nil {
			return db, errors.New("usage: find <collection> [criteria]")
		}
		criteria, err := parseCriteria(body)
		if err != nil {
			return db, err
		}
		docs, err := db.Collection(name).FindAll(criteria).All(ctx)
		if err != nil {
			return db, err
		}
		fmt.Print(litter.Sdump(docs), "\n")
		return db, nil

	case "findone":
		name, body, err := splitArgs(rest)
		if err != nil {
			return db, errors.New("usage: findone <collection> [criteria]")
		}
		criteria, err := parseCriteria(body)
		if err != nil {
			return db, err
		}
		doc, err := db.Collection(name).FindOne(ctx, criteria)
		if err != nil {
			return db, err
		}
		fmt.Print(litter.Sdump(doc), "\n")
		return db, nil

	case "count":
		name, body, err := splitArgs(rest)
		if err != nil {
			return db, errors.New("usage: count <collection> [criteria]")
		}
		criteria, err := parseCriteria(body)
		if err != nil {
			return db, err
		}
		count, err := db.Collection(name).FindAll(criteria).Count(ctx)
		if err != nil {
			return db, err
		}
		fmt.Println(count)
		return db, nil

	case "delete":
		name, body, err := splitArgs(rest)
		if err != nil {
			return db, errors.New("usage: delete <collection> [criteria]")
		}
		criteria, err := parseCriteria(body)
		if err != nil {
			return db, err
		}
		return db, db.Collection(name).Delete(ctx, criteria)

	default:
		return db, fmt.Errorf("unknown command: %s (try help)", cmd)
	}
}

func splitArgs(rest string) (string, string, error) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", "", errors.New("missing collection")
	}
	name, body, _ := strings.Cut(rest, " ")
	return name, strings.TrimSpace(body), nil
}

// parseRecord converts extended JSON input to a native record. Keys are
// kept verbatim: the input is already native side, so running it through
// the codec's key desanitization would corrupt operator keys like $gt.
func parseRecord(body string) (map[string]any, error) {
	doc, err := wire.UnmarshalDocument([]byte(body))
	if err != nil {
		return nil, err
	}
	return toNative(doc).(map[string]any), nil
}

func toNative(value any) any {
	switch t := value.(type) {
	case *wire.Document:
		out := make(map[string]any, t.Len())
		for _, k := range t.Keys() {
			v, _ := t.Get(k)
			out[k] = toNative(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = toNative(v)
		}
		return out
	default:
		return t
	}
}

func parseCriteria(body string) (mango.Criteria, error) {
	if body == "" {
		return nil, nil
	}
	record, err := parseRecord(body)
	if err != nil {
		return nil, err
	}
	return mango.Criteria(record), nil
}
