// Command groupctl manages groups, which have no page on the site.
//
//	groupctl create -title "Котики" -slug cats -description "Про котиков"
//	groupctl list
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"yatube/cmd/app"
	"yatube/internal/config"
	"yatube/internal/logger"
	"yatube/internal/service"
	"yatube/internal/validation"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.LoadConfig()
	db, services := app.Store(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	code := 2
	switch os.Args[1] {
	case "create":
		code = create(ctx, services.Group, os.Args[2:])
	case "list":
		code = list(ctx, services.Group)
	default:
		fmt.Fprintln(os.Stderr, usageText)
	}

	cancel()
	db.CloseDB()
	os.Exit(code)
}

const usageText = "использование: groupctl create -title T -slug S [-description D] | groupctl list"

func usage() {
	fmt.Fprintln(os.Stderr, usageText)
	os.Exit(2)
}

func create(ctx context.Context, groups service.GroupService, args []string) int {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	var in service.GroupInput
	fs.StringVar(&in.Title, "title", "", "название группы")
	fs.StringVar(&in.Slug, "slug", "", "адрес группы")
	fs.StringVar(&in.Description, "description", "", "описание группы")
	fs.Parse(args)

	group, err := groups.CreateGroup(ctx, in)
	if err != nil {
		if errs, ok := validation.AsErrors(err); ok {
			for field, messages := range errs.Messages() {
				for _, msg := range messages {
					fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
				}
			}
			return 1
		}
		logger.Error.Printf("Не удалось создать группу: %v", err)
		return 1
	}

	fmt.Printf("Группа %q создана: /group/%s/\n", group.Title, group.Slug)
	return 0
}

func list(ctx context.Context, groups service.GroupService) int {
	all, err := groups.ListGroups(ctx)
	if err != nil {
		logger.Error.Printf("Не удалось получить группы: %v", err)
		return 1
	}

	for _, g := range all {
		fmt.Printf("%d\t%s\t%s\n", g.GroupID, g.Slug, g.Title)
	}
	return 0
}
