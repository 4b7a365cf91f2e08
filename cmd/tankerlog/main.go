// Command tankerlog serves the tanker log API or writes a report from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Compufreak345/dbg"

	"github.com/scgdepot/tankerlog/auth"
	"github.com/scgdepot/tankerlog/config"
	"github.com/scgdepot/tankerlog/dbMan"
	"github.com/scgdepot/tankerlog/jsonapi/export"
	"github.com/scgdepot/tankerlog/jsonapi/recordManager"
	"github.com/scgdepot/tankerlog/server"
)

const mTag = dbg.Tag("tankerlog/cmd")

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s serve|export [flags]\n", os.Args[0])
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	var err error
	switch os.Args[1] {
	case "serve":
		err = serve(os.Args[2:])
	case "export":
		err = exportCmd(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg      *config.Config
	store    *recordManager.Store
	exporter *export.Exporter
}

func openApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	p, err := dbMan.Open(cfg.Store.Backend, cfg.Store.Path, cfg.Store.Key)
	if err != nil {
		return nil, err
	}
	store, err := recordManager.Open(p)
	if err != nil {
		p.Close()
		return nil, err
	}
	e := export.NewExporter(cfg.Export.Dir, cfg.Export.FontFile)
	e.Version = cfg.Export.Version
	return &app{cfg: cfg, store: store, exporter: e}, nil
}

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file (yaml, toml or json)")
	addr := fs.String("addr", "", "listen address, overrides http.addr")
	fs.Parse(args)

	a, err := openApp(*cfgPath)
	if err != nil {
		return err
	}
	defer a.store.Close()
	if a.cfg.Auth.Secret == "" {
		dbg.W(mTag, "No auth.secret configured, every mutation will be rejected")
	}

	srv := server.New(a.store, a.exporter, auth.NewTokenActorSource(a.cfg.Auth.Secret), server.Options{
		AllowOrigins:    a.cfg.HTTP.AllowOrigins,
		DefaultLanguage: a.cfg.Report.DefaultLanguage,
	})
	listen := a.cfg.HTTP.Addr
	if *addr != "" {
		listen = *addr
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, listen)
}

func exportCmd(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file (yaml, toml or json)")
	format := fs.String("format", export.FormatPDF, "pdf or json")
	lang := fs.String("lang", "", "report language (ar, fr, en), defaults to report.defaultLanguage")
	start := fs.String("start", "", "first day, YYYY-MM-DD")
	end := fs.String("end", "", "last day, YYYY-MM-DD")
	ids := fs.String("ids", "", "comma separated record ids")
	title := fs.String("title", "", "report title")
	fs.Parse(args)

	a, err := openApp(*cfgPath)
	if err != nil {
		return err
	}
	defer a.store.Close()

	req := export.ExportRequest{
		Format:    *format,
		Language:  *lang,
		StartDate: *start,
		EndDate:   *end,
		Title:     *title,
	}
	if req.Language == "" {
		req.Language = a.cfg.Report.DefaultLanguage
	}
	for _, id := range strings.Split(*ids, ",") {
		if id = strings.TrimSpace(id); id != "" {
			req.Ids = append(req.Ids, id)
		}
	}
	resPath, count, err := a.exporter.Export(req, a.store.List())
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d records)\n", resPath, count)
	return nil
}
