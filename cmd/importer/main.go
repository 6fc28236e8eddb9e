package main

import (
	"encoding/json"
	"fmt"
	"os"

	"cobranzas/internal/config"
	"cobranzas/internal/database"
	"cobranzas/internal/importer"
	"cobranzas/internal/logger"

	"github.com/spf13/cobra"
)

type options struct {
	migrate bool
	asJSON  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "importer",
		Short:         "Importa padrones de clientes o asesores desde Excel/CSV",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVar(&opts.migrate, "migrate", false, "Ejecutar AutoMigrate antes de importar")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Imprimir el resultado como JSON")

	root.AddCommand(
		newKindCmd(importer.KindClients, "Importa el padrón de clientes, carteras y cuentas", &opts),
		newKindCmd(importer.KindAdvisors, "Importa el padrón de asesores", &opts),
	)
	return root
}

func newKindCmd(kind importer.Kind, short string, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + " <archivo>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, kind, args[0], *opts)
		},
	}
}

func runImport(cmd *cobra.Command, kind importer.Kind, path string, opts options) error {
	if !importer.SupportedExtension(path) {
		return importer.ErrUnsupportedFormat
	}

	cfg := config.Load()
	log := logger.NewFromLevel(cfg.LogLevel).WithOutput(cmd.ErrOrStderr())

	provider := database.NewProvider(cfg.DBDriver, cfg.DSN(), log)
	defer func() { _ = provider.Close() }()

	db, err := provider.Acquire(cmd.Context())
	if err != nil {
		return fmt.Errorf("conexión a la base de datos: %w", err)
	}
	if opts.migrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migración: %w", err)
		}
	}

	res, err := importer.ImportFile(cmd.Context(), db, kind, path, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		return json.NewEncoder(out).Encode(res)
	}
	fmt.Fprintln(out, importer.SuccessMessage)
	fmt.Fprintf(out, "registros: %d\nprocesados: %d\nomitidos: %d\n", res.Registros, res.Procesados, res.Omitidos)
	return nil
}
