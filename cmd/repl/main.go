package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/arjunmenon/pagebase/internal/config"
	"github.com/arjunmenon/pagebase/internal/engine"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	fmt.Println("pagebase - interactive shell")
	fmt.Println("Type 'help' for commands, 'exit' to quit")
	fmt.Println()

	fmt.Printf("Opening %s...\n", cfg.DBPath)
	db, err := engine.Open(cfg.DBPath, cfg.CacheCapacity, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	runREPL(db, cfg)
}

func runREPL(db *engine.Database, cfg config.Config) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("db> ")

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" || line == "\\q" {
			fmt.Println("goodbye")
			break
		}

		if strings.HasPrefix(line, ".") {
			if !handleMetaCommand(line, db, cfg) {
				break
			}
			continue
		}

		if line == "help" || line == "\\h" {
			showHelp()
			continue
		}

		result, err := db.Execute(line)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printResult(result)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
	}
}

// handleMetaCommand runs a dot-prefixed meta command. It returns false when
// the REPL loop should stop (".exit").
func handleMetaCommand(cmd string, db *engine.Database, cfg config.Config) bool {
	switch cmd {
	case ".tables":
		showTables(db)
	case ".stats", ".statistics":
		showStats(db, cfg)
	case ".help":
		showHelp()
	case ".clear":
		fmt.Print("\033[H\033[2J")
	case ".exit":
		fmt.Println("goodbye")
		return false
	default:
		fmt.Printf("unknown meta command: %s\n", cmd)
		fmt.Println("type '.help' for available meta commands")
	}
	return true
}

func showTables(db *engine.Database) {
	result, err := db.Execute("SHOW TABLES")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printResult(result)
}

func showStats(db *engine.Database, cfg config.Config) {
	stats := db.Stats()
	fmt.Println("\nBuffer cache:")
	fmt.Printf("  Capacity:   %d pages\n", stats.Capacity)
	fmt.Printf("  Size:       %d pages\n", stats.Size)
	fmt.Printf("  Hits:       %d\n", stats.Hits)
	fmt.Printf("  Misses:     %d\n", stats.Misses)
	fmt.Printf("  Evictions:  %d\n", stats.Evictions)
	fmt.Printf("  Dirty:      %d pages\n", stats.DirtyPages)

	if info, err := os.Stat(cfg.DBPath); err == nil {
		fmt.Printf("\nFile: %s (%.2f KB)\n", cfg.DBPath, float64(info.Size())/1024)
	}
	fmt.Println()
}

func printResult(result *engine.Result) {
	if result.Message != "" {
		fmt.Println(result.Message)
	}
	if len(result.Columns) == 0 {
		return
	}

	fmt.Println(strings.Join(result.Columns, " | "))
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%v", v)
		}
		fmt.Println(strings.Join(cells, " | "))
	}
	fmt.Printf("(%d row(s))\n", len(result.Rows))
}

func showHelp() {
	fmt.Println("\nSQL commands:")
	fmt.Println("  CREATE TABLE name (col TYPE [PRIMARY KEY], ...)")
	fmt.Println("  INSERT INTO table VALUES (...)")
	fmt.Println("  SELECT cols FROM table [JOIN other ON a = b] [WHERE col OP val]")
	fmt.Println("  UPDATE table SET col = val [WHERE ...]")
	fmt.Println("  DELETE FROM table [WHERE ...]")
	fmt.Println("  SHOW TABLES")
	fmt.Println()
	fmt.Println("Meta commands:")
	fmt.Println("  .tables  list tables")
	fmt.Println("  .stats   show buffer cache statistics")
	fmt.Println("  .clear   clear the screen")
	fmt.Println("  .help    show this help")
	fmt.Println("  .exit    exit the shell")
	fmt.Println()
	fmt.Println("Control commands:")
	fmt.Println("  help           show this help")
	fmt.Println("  exit, quit     exit the shell")
	fmt.Println()
}
