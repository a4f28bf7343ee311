package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"billdoc/internal/config"
	"billdoc/internal/repository/postgres"
)

const usage = "Usage: migrate [-path dir] up|down|steps N|force V|version"

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(v int) error
	Version() (uint, bool, error)
}

// command is a parsed migrate invocation.
type command struct {
	name string
	n    int
}

func main() {
	dir := flag.String("path", "db/migrations", "directory holding the generations table migrations")
	flag.Parse()

	cmd, err := parseCommand(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m, err := postgres.NewMigrator(*dir, &cfg.DB)
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}
	defer m.Close()

	log.Printf("migrate: %s on %s database", cmd.name, cfg.DB.Driver)
	if err := run(m, cmd); err != nil {
		log.Fatalf("migrate %s failed: %v", cmd.name, err)
	}
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New("missing command")
	}
	cmd := command{name: args[0]}
	switch cmd.name {
	case "up", "down", "version":
		return cmd, nil
	case "steps", "force":
		if len(args) < 2 {
			return command{}, fmt.Errorf("%s requires a number argument", cmd.name)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return command{}, fmt.Errorf("invalid %s argument: %w", cmd.name, err)
		}
		cmd.n = n
		return cmd, nil
	default:
		return command{}, fmt.Errorf("unknown command: %s", cmd.name)
	}
}

func run(m migrator, cmd command) error {
	switch cmd.name {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "steps":
		return ignoreNoChange(m.Steps(cmd.n))
	case "force":
		return m.Force(cmd.n)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)
		return nil
	}
	return fmt.Errorf("unknown command: %s", cmd.name)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("migrate: no change")
		return nil
	}
	return err
}
