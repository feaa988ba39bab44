package main

import (
	"errors"
	"fmt"

	"github.com/alexrjones/ddltypes/pgmodelparse"
	"github.com/alexrjones/ddltypes/typefile"
	"github.com/alexrjones/ddltypes/typemap"
	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// errNotFound makes lookup exit with status 1 after printing false.
var errNotFound = errors.New("type not found")

type options struct {
	datatypeFile string
	verbose      bool

	// loaded in PersistentPreRunE; empty when no file was given
	extended *typefile.Registry
}

func newRootCmd() *cobra.Command {

	opts := &options{}
	root := &cobra.Command{
		Use:           "ddltypes",
		Short:         "Load extended DDL datatype files and classify column types",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if opts.verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)

			if opts.datatypeFile == "" {
				opts.extended = &typefile.Registry{}
				return nil
			}
			reg, err := typefile.Load(opts.datatypeFile)
			if err != nil {
				return err
			}
			log.Debug().Str("file", opts.datatypeFile).Int("types", reg.Len()).Msg("loaded datatype file")
			opts.extended = reg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.datatypeFile, "datatype-file", "", "file of extended DDL datatypes")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newShowCmd(opts),
		newLookupCmd(opts),
		newCheckCmd(opts),
		newResolveCmd(opts),
		newClassifyCmd(opts),
	)
	return root
}

func requireDatatypeFile(opts *options) error {
	if opts.datatypeFile == "" {
		return errors.New("--datatype-file is required")
	}
	return nil
}

func newShowCmd(opts *options) *cobra.Command {

	var builtin bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the datatype file in canonical form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := opts.extended
			if builtin {
				reg = typemap.Builtin
			} else if err := requireDatatypeFile(opts); err != nil {
				return err
			}
			_, err := reg.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().BoolVar(&builtin, "builtin", false, "print the built-in type tables instead")
	return cmd
}

func newLookupCmd(opts *options) *cobra.Command {

	return &cobra.Command{
		Use:   "lookup <category> <type>",
		Short: "Report whether the datatype file lists a type under a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatatypeFile(opts); err != nil {
				return err
			}
			cat, err := typefile.ParseCategory(args[0])
			if err != nil {
				return err
			}
			found := opts.extended.Lookup(cat, args[1])
			fmt.Fprintln(cmd.OutOrStdout(), found)
			if !found {
				return errNotFound
			}
			return nil
		},
	}
}

func newCheckCmd(opts *options) *cobra.Command {

	return &cobra.Command{
		Use:   "check",
		Short: "Check the datatype file for types listed under several categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatatypeFile(opts); err != nil {
				return err
			}
			for _, c := range typefile.Categories() {
				if !opts.extended.Defined(c) {
					log.Warn().Str("file", opts.datatypeFile).Msgf("%s is not defined, treating it as empty", c.FileName())
				}
			}
			if err := opts.extended.Duplicates(); err != nil {
				return fmt.Errorf("%s: %w", opts.datatypeFile, err)
			}
			log.Info().Str("file", opts.datatypeFile).Int("types", opts.extended.Len()).Msg("datatype file ok")
			return nil
		},
	}
}

func newResolveCmd(opts *options) *cobra.Command {

	return &cobra.Command{
		Use:   "resolve <type>...",
		Short: "Print the category of each column type, built-in tables included",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier := typemap.NewClassifier(opts.extended)
			for _, sqlType := range args {
				cat, err := classifier.Classify(sqlType)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", sqlType, cat)
			}
			return nil
		},
	}
}

func newClassifyCmd(opts *options) *cobra.Command {

	var (
		autoID      bool
		skipUnknown bool
		dump        bool
	)
	cmd := &cobra.Command{
		Use:   "classify <dir>",
		Short: "Replay the .sql files under dir and report the category of every column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			migrations, err := readMigrations(args[0])
			if err != nil {
				return err
			}

			classifier := typemap.NewClassifier(opts.extended)
			log.Debug().Int("extended_types", classifier.Extended().Len()).Msg("classifying columns")
			compiler := pgmodelparse.NewCompiler(classifier)
			compiler.AutoID = autoID
			compiler.SkipUnknownTypes = skipUnknown
			for _, mig := range migrations {
				log.Debug().Str("file", mig.path).Msg("replaying migration")
				if err = compiler.ParseRaw(mig.sql); err != nil {
					return fmt.Errorf("%s: %w", mig.path, err)
				}
			}

			if dump {
				spew.Fdump(cmd.OutOrStdout(), compiler.Catalog)
				return nil
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err = enc.Encode(buildReport(compiler.Catalog)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().BoolVar(&autoID, "auto-id", false, "treat columns named id as generated by the database")
	cmd.Flags().BoolVar(&skipUnknown, "skip-unknown", false, "report columns of unknown type instead of failing")
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the compiled catalog instead of the report")
	return cmd
}
