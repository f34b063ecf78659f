package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"files-bot/api"
	"files-bot/config"
	"files-bot/controller"
	"files-bot/models"
	"files-bot/storage/local"
	"files-bot/storage/object"
)

const usage = `usage: filesctl [flags] <operation> [args]

operations:
  upload <path> <title> <description>
  download <title>
  list
  details <title>
  search <title> <date>

flags:
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("filesctl: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("filesctl", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file (json or yaml)")
	server := fs.String("server", "", "file storage base URL, overrides the config")
	outDir := fs.String("out", ".", "directory downloads are saved to")
	saveTo := fs.String("save", "local", "download target: local or minio")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := &config.Config{}
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if *server != "" {
		cfg.ServerAddress = *server
	}
	if cfg.ServerAddress == "" {
		return errors.New("no server address: pass -server or -config")
	}

	files := controller.New(api.NewClient(cfg.ServerAddress, nil))

	op, opArgs := fs.Arg(0), fs.Args()
	if len(opArgs) > 0 {
		opArgs = opArgs[1:]
	}

	var result controller.Result
	switch op {
	case "upload":
		if len(opArgs) != 3 {
			return errors.New("upload needs <path> <title> <description>")
		}
		f, err := os.Open(opArgs[0])
		if err != nil {
			return err
		}
		defer f.Close()
		result = files.Upload(ctx, models.UploadRequest{
			FileName:    filepath.Base(opArgs[0]),
			File:        f,
			Title:       opArgs[1],
			Description: opArgs[2],
		})

	case "download":
		saver, err := newSaver(cfg, *saveTo, *outDir)
		if err != nil {
			return err
		}
		result = files.Download(ctx, argAt(opArgs, 0), saver)

	case "list":
		result = files.List(ctx)

	case "details":
		result = files.Details(ctx, argAt(opArgs, 0))

	case "search":
		result = files.Search(ctx, argAt(opArgs, 0), argAt(opArgs, 1))

	default:
		fs.Usage()
		return fmt.Errorf("unknown operation %q", op)
	}

	_, err := fmt.Fprintln(stdout, result.Text)
	return err
}

func newSaver(cfg *config.Config, target, outDir string) (controller.Saver, error) {
	switch target {
	case "local":
		dir, err := local.New(outDir)
		if err != nil {
			return nil, err
		}
		return dir, nil
	case "minio":
		if !cfg.ObjectStorageEnabled() {
			return nil, errors.New("object_storage is not configured")
		}
		s := cfg.ObjectStorage
		storage, err := object.New(s.Endpoint, s.AccessKey, s.SecretKey, s.Bucket, s.UseSSL)
		if err != nil {
			return nil, err
		}
		log.Printf("Saving downloads to %s", storage.URL(""))
		return storage, nil
	}
	return nil, fmt.Errorf("unknown save target %q", target)
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
