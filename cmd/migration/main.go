package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/people-service/internal/config"
	"gitlab.com/dirk.krummacker/people-service/internal/service"
)

var migrationCmd = &cobra.Command{
	Use:          "migration",
	Short:        "Execute an SQL file against the people database",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	config.RegisterFlags(migrationCmd.Flags())
	migrationCmd.Flags().String("file", "database.sql", "the sql file to execute")
}

// Usage example on the command line:
// > DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 go run main.go --file=../../scripts/database.sql
func main() {
	if err := migrationCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	conf, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}

	sqlDB, err := service.CreateDatabase(conf)
	if err != nil {
		return err
	}
	db := sqlx.NewDb(sqlDB, "mysql")
	defer db.Close()

	readFile, err := os.Open(file) // nosemgrep
	if err != nil {
		return err
	}
	defer readFile.Close()

	// Statements may span several lines; a line containing ';' ends a statement.
	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	executed := 0
	for fileScanner.Scan() {
		line := fileScanner.Text()
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			if _, err := db.Exec(builder.String()); err != nil {
				return fmt.Errorf("statement %d: %w", executed+1, err)
			}
			executed++
			builder = strings.Builder{}
		}
	}
	if err := fileScanner.Err(); err != nil {
		return err
	}
	fmt.Printf("executed %d statements from %s\n", executed, file)
	return nil
}
