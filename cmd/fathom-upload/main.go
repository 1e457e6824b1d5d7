// fathom-upload encrypts a local file, stores the ciphertext, and registers
// the document on the ledger. It is a thin wrapper over the library; all
// pipeline behavior lives in the packages it wires together.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/fathom0x/libfathom-go/config"
	"github.com/fathom0x/libfathom-go/document"
	"github.com/fathom0x/libfathom-go/keystore"
	"github.com/fathom0x/libfathom-go/ledger"
	"github.com/fathom0x/libfathom-go/walrus"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("upload failed")
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "path to config file (key = value)")
		envFile    = flag.String("env", "", "path to .env file with FATHOM_* overrides")
		name       = flag.String("name", "", "document display name (defaults to the file name)")
		desc       = flag.String("desc", "", "document description")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: fathom-upload [flags] <file>")
	}
	path := flag.Arg(0)

	cfg, err := loadConfig(*configPath, *envFile)
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	plaintext, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	displayName := *name
	if displayName == "" {
		displayName = filepath.Base(path)
	}

	store, err := keystore.OpenBoltStore(cfg.KeystorePath())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	blobs := walrus.NewClient(walrus.Config{
		PublisherURL:  cfg.PublisherURL,
		AggregatorURL: cfg.AggregatorURL,
		Epochs:        cfg.Epochs,
	})
	svc := ledger.NewClient(ledger.RPCConfig{URL: cfg.LedgerURL})

	registrar := document.NewRegistrar(blobs, svc, keystore.NewIndex(store))
	registrar.Epochs = cfg.Epochs

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := registrar.Register(ctx, plaintext, displayName, *desc)
	if err != nil {
		var regErr *document.RegistrationError
		if errors.As(err, &regErr) {
			logrus.WithField("blob_id", regErr.BlobID).
				Error("ciphertext uploaded but ledger registration failed; " +
					"retry with the same file once the ledger is reachable")
		}
		return err
	}

	fmt.Printf("blob id:      %s\n", reg.BlobID)
	fmt.Printf("document id:  %s\n", reg.DocumentID)
	fmt.Printf("tx digest:    %s\n", reg.TxDigest)
	fmt.Printf("fingerprint:  %s\n", reg.Fingerprint)
	if reg.Simulated {
		fmt.Println("WARNING: all storage endpoints failed; the ciphertext is in the")
		fmt.Println("simulated store only and is NOT durable.")
	}
	return nil
}

// loadConfig resolves the configuration sources: explicit file, else
// environment (optionally seeded from a .env file).
func loadConfig(configPath, envFile string) (config.Config, error) {
	if configPath != "" {
		return config.LoadConfig(configPath)
	}
	return config.FromEnv(envFile)
}
