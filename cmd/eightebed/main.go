package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/catseye/eightebed"
)

var cmdLog = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "eightebed <input.8b>",
	Short: "Compile an Eightebed program to C",
	Long:  "eightebed parses, checks and emits a C translation unit for one Eightebed source file.",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	flags.StringP("output", "o", "", "path to write the generated C file (default: the input path with a .c extension)")
	flags.String("pedigree", "", "banner text identifying the provenance of the generated file (default: the input path)")
	flags.BoolP("trace-marking", "m", false, "emit marker entry/exit trace statements")
	flags.StringP("pointer-format", "f", "$%08lx", "printf conversion used by marker traces")
	flags.Bool("dump-ast", false, "print the parsed AST to stderr before checking")
	flags.Bool("compile", false, "invoke the host C compiler (env CC, default cc) on the generated file")
	flags.Bool("run", false, "with --compile, also run the resulting binary")
	flags.Bool("clean", false, "with --compile/--run, remove the generated .c file afterward (and, with --run, the binary)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log each pipeline stage, and the AST dump at debug level")

	viper.BindPFlag("output", flags.Lookup("output"))
	viper.BindPFlag("pedigree", flags.Lookup("pedigree"))
	viper.BindPFlag("trace-marking", flags.Lookup("trace-marking"))
	viper.BindPFlag("pointer-format", flags.Lookup("pointer-format"))
	viper.BindPFlag("dump-ast", flags.Lookup("dump-ast"))
	viper.BindPFlag("compile", flags.Lookup("compile"))
	viper.BindPFlag("run", flags.Lookup("run"))
	viper.BindPFlag("clean", flags.Lookup("clean"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	viper.SetConfigName("eightebed")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("EIGHTEBED")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	if viper.GetBool("verbose") {
		cmdLog.SetLevel(logrus.DebugLevel)
	} else {
		cmdLog.SetLevel(logrus.WarnLevel)
	}

	inputPath := args[0]
	pedigree := viper.GetString("pedigree")
	if pedigree == "" {
		pedigree = inputPath
	}

	cmdLog.WithField("path", inputPath).Info("parsing")
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	program, err := eightebed.Parse(string(src))
	if err != nil {
		return err
	}

	if viper.GetBool("dump-ast") {
		cmdLog.Debug("dumping AST")
		fmt.Fprint(os.Stderr, eightebed.DumpAST(program))
	}

	cmdLog.Info("checking")
	checked, err := eightebed.Check(program)
	if err != nil {
		return err
	}

	outputPath := viper.GetString("output")
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".c"
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	cmdLog.WithField("path", outputPath).Info("emitting")
	opts := eightebed.Options{
		Pedigree:      pedigree,
		TraceMarking:  viper.GetBool("trace-marking"),
		PointerFormat: viper.GetString("pointer-format"),
	}
	if err := eightebed.Emit(checked, out, opts); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if !viper.GetBool("compile") && !viper.GetBool("run") {
		return nil
	}
	return compileAndRun(outputPath)
}

// compileAndRun hands the emitted file to the host C toolchain (spec
// §6's "C toolchain" external collaborator) and, if requested, runs
// the resulting binary, mirroring drivers.py's compile/run/clean
// sequence.
func compileAndRun(cPath string) error {
	binPath := strings.TrimSuffix(cPath, filepath.Ext(cPath))
	cc := os.Getenv("CC")
	if cc == "" {
		cc = "cc"
	}

	if viper.GetBool("clean") {
		defer os.Remove(cPath)
	}

	cmdLog.WithField("compiler", cc).Info("compiling")
	compile := exec.Command(cc, cPath, "-o", binPath)
	compile.Stdout = os.Stdout
	compile.Stderr = os.Stderr
	if err := compile.Run(); err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}

	if !viper.GetBool("run") {
		return nil
	}
	if viper.GetBool("clean") {
		defer os.Remove(binPath)
	}

	cmdLog.Info("running")
	run := exec.Command(binPath)
	run.Stdout = os.Stdout
	run.Stderr = os.Stderr
	run.Stdin = os.Stdin
	return run.Run()
}
