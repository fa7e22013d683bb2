// Package output provides functions to print messages with optional color formatting
package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"github.com/wasmhost/wasm/domain"
	"github.com/wasmhost/wasm/services"
	"github.com/wasmhost/wasm/validators"
)

const (
	Plain   = color.FgWhite
	Success = color.FgGreen
	Warning = color.FgYellow
	Error   = color.FgRed
	Info    = color.FgCyan
)

const timeFormat = "2006-01-02 15:04:05"

var maybeColorize func(kind color.Attribute, tmpl string, a ...any) string

// InitColors sets up color functions based on environment
func InitColors(isColorDisabled bool) {
	if color.NoColor || isColorDisabled {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return fmt.Sprintf(tmpl, a...)
		}
	} else {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return color.New(kind).SprintfFunc()(tmpl, a...)
		}
	}
}

// PrintMessage formats a message with color (if enabled) and a trailing newline
func PrintMessage(kind color.Attribute, tmpl string, a ...any) string {
	if maybeColorize == nil || kind == Plain {
		return fmt.Sprintf(tmpl+"\n", a...)
	}
	return fmt.Sprintln(maybeColorize(kind, tmpl, a...))
}

// Fprint writes a formatted message to the command's output.
func Fprint(cmd *cobra.Command, kind color.Attribute, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), PrintMessage(kind, tmpl, a...))
	return err
}

// FprintPlain writes s to the command's output unchanged.
func FprintPlain(cmd *cobra.Command, s string) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), s)
	return err
}

// Step renders a "[i/n] message" progress line.
func Step(i, n int, tmpl string, a ...any) string {
	return PrintMessage(Info, "[%d/%d] %s", i, n, fmt.Sprintf(tmpl, a...))
}

func PrintTable(header []string, data [][]string) (string, error) {
	buf := strings.Builder{}

	table := tablewriter.NewTable(
		&buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines: tw.Lines{
					ShowHeaderLine: tw.Off,
				},
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{PerColumn: []tw.Align{tw.AlignRight, tw.AlignLeft}},
			},
		}))

	if len(header) > 0 {
		table.Header(header)
	}

	if err := table.Bulk(data); err != nil {
		return "", fmt.Errorf("bulk adding data to table: %w", err)
	}

	if err := table.Render(); err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}

	return buf.String(), nil
}

// PrintDomainParts renders a normalized domain and its parts.
func PrintDomainParts(parts validators.DomainParts) (string, error) {
	data := [][]string{
		{"Domain", parts.String()},
		{"Subdomain", orDash(parts.Subdomain)},
		{"Base Domain", parts.Domain},
		{"TLD", parts.TLD},
		{"Is Subdomain", strconv.FormatBool(parts.HasSubdomain())},
	}
	return PrintTable(nil, data)
}

// PrintSource renders a classified source.
func PrintSource(source validators.SourceDescriptor) (string, error) {
	data := [][]string{{"Kind", source.Kind.String()}}
	if source.IsGit() {
		data = append(data, []string{"URL", source.URL})
	} else {
		data = append(data, []string{"Path", source.Path})
	}
	data = append(data, []string{"Name", source.BaseName()})
	return PrintTable(nil, data)
}

func PrintAppDetails(app *domain.App, short bool) (string, error) {
	data := [][]string{
		{"Name", app.Name},
		{"Domain", app.Domain},
		{"URL", app.URL()},
		{"Type", app.Type.String()},
		{"Port", strconv.Itoa(app.Port)},
		{"Source", app.Source.Location()},
	}

	if !short {
		data = append(data, [][]string{
			{"ID", app.ID.String()},
			{"Source Kind", app.Source.Kind.String()},
			{"Branch", orDash(app.GitBranch)},
			{"Git Auth", orDash(app.GitAuth.Type().String())},
			{"Directory", app.Dir},
			{"Last Commit", orDash(shortCommit(app.LastCommit))},
		}...)
	}

	data = append(data, []string{"Status", statusText(app.Status)})
	if app.LastError != "" {
		data = append(data, []string{"Last Error", app.LastError})
	}

	if !short && !app.CreatedAt.IsZero() {
		data = append(data, [][]string{
			{"Created At", app.CreatedAt.Format(timeFormat)},
			{"Updated At", app.UpdatedAt.Format(timeFormat)},
		}...)
	}

	table, err := PrintTable(nil, data)
	if err != nil {
		return "", fmt.Errorf("printing app details table: %w", err)
	}
	return table, nil
}

func PrintAppList(apps []*domain.App) (string, error) {
	if len(apps) == 0 {
		return PrintMessage(Plain, "No apps found."), nil
	}

	header := []string{"Name", "Domain", "Type", "Port", "Source", "Status", "Updated At"}
	var data [][]string
	for _, app := range apps {
		data = append(data, []string{
			app.Name,
			app.Domain,
			app.Type.String(),
			strconv.Itoa(app.Port),
			app.Source.Location(),
			statusText(app.Status),
			app.UpdatedAt.Format(timeFormat),
		})
	}

	table, err := PrintTable(header, data)
	if err != nil {
		return "", fmt.Errorf("printing app list table: %w", err)
	}
	return table, nil
}

// PrintSetupSteps renders the outcome of setup init.
func PrintSetupSteps(steps []services.SetupStep) string {
	var b strings.Builder
	for i, step := range steps {
		line := step.Description
		if step.Path != "" {
			line += ": " + step.Path
		}
		b.WriteString(Step(i+1, len(steps), "%s", line))
		if step.Changed {
			b.WriteString(PrintMessage(Success, "  done"))
		} else {
			b.WriteString(PrintMessage(Plain, "  already in place"))
		}
	}
	return b.String()
}

// PrintPermissionReport renders a permission check table and a summary.
func PrintPermissionReport(report services.PermissionReport) (string, error) {
	header := []string{"Check", "Path", "Access", "Status", "Suggestion"}
	var data [][]string
	for _, check := range report.Checks {
		data = append(data, []string{
			check.Name,
			check.Path,
			string(check.Access),
			permissionText(check),
			check.Suggestion(),
		})
	}

	table, err := PrintTable(header, data)
	if err != nil {
		return "", fmt.Errorf("printing permission table: %w", err)
	}

	if report.HasIssues() {
		return table + PrintMessage(Warning, "Some directories need to be created or have permissions fixed. Run: sudo wasm setup init"), nil
	}
	return table + PrintMessage(Success, "All permissions OK. Changes to nginx and systemd still require sudo."), nil
}

func statusText(status domain.AppStatus) string {
	switch status {
	case domain.AppStatusFetched:
		return colorize(Success, status.String())
	case domain.AppStatusFailed:
		return colorize(Error, status.String())
	case domain.AppStatusPending:
		return colorize(Warning, status.String())
	default:
		return status.String()
	}
}

func permissionText(check services.PermissionCheck) string {
	switch {
	case check.Status == services.PermissionOK:
		return colorize(Success, string(check.Status))
	case check.Optional:
		return colorize(Warning, string(check.Status))
	default:
		return colorize(Error, string(check.Status))
	}
}

func colorize(kind color.Attribute, s string) string {
	if maybeColorize == nil {
		return s
	}
	return maybeColorize(kind, "%s", s)
}

func shortCommit(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// NoColor is a flag that can be used to disable colored output in the CLI.
var NoColor = &noColorFlag{set: false}

type noColorFlag struct {
	set bool
}

func (f *noColorFlag) Set(value string) error {
	// Boolean flag: any value marks it as set.
	f.set = true
	return nil
}

func (f *noColorFlag) String() string {
	if f.set {
		return "true"
	}
	return "false"
}

func (f *noColorFlag) Type() string {
	return "bool"
}

// IsSet returns true if the --no-color flag was explicitly set
func (f *noColorFlag) IsSet() bool {
	return f.set
}

// IsBoolFlag tells pflag this is a boolean flag (no argument required)
func (f *noColorFlag) IsBoolFlag() bool {
	return true
}

// Reset clears the flag between command runs in tests.
func (f *noColorFlag) Reset() {
	f.set = false
}
