package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/simcheck/internal/catalogue"
	"github.com/AndreyAkinshin/simcheck/internal/record"
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the catalogue and list the discovered units",
		Long: `Validate loads the catalogue, checks it against the schema, resolves every
model, sim and run directory and every baseline file, and lists the result
without building or running anything.`,
		Args: cobra.NoArgs,
		RunE: a.runValidate,
	}
}

func (a *app) runValidate(cmd *cobra.Command, _ []string) error {
	proj, err := a.loadProject()
	if err != nil {
		return err
	}

	report, warnings, err := catalogue.Discover(cmd.Context(), proj.Config, catalogue.Options{
		Root:   proj.Root,
		LogDir: proj.LogDir(a.opts.LogDir),
		Model:  a.opts.Model,
	})
	for _, w := range warnings {
		a.out.WarningSimple("%s", w)
	}
	if err != nil {
		return err
	}

	a.out.Section("Catalogue " + proj.ConfigPath)
	a.out.Table([]string{"MODEL", "SIM", "RUN", "COMPARISONS", "EXECUTABLE"}, catalogueRows(report))
	a.out.Success("Catalogue is valid: %d models, %d sims, %d runs",
		len(report.Models), len(report.Sims()), len(report.Runs()))
	return nil
}

func catalogueRows(report *record.PackageReport) [][]string {
	var rows [][]string
	for _, s := range report.Sims() {
		exe := "missing"
		if s.HasExecutable() {
			exe = "present"
		}
		if len(s.Runs) == 0 {
			rows = append(rows, []string{s.Model, s.Name, "-", "0", exe})
			continue
		}
		for _, r := range s.Runs {
			rows = append(rows, []string{s.Model, s.Name, r.Name, strconv.Itoa(len(r.Comparisons)), exe})
		}
	}
	return rows
}
