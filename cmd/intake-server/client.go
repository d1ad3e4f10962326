package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/carepoint/intake/pkg/client"
)

const defaultAPIURL = "http://localhost:8000/api"

// registration is the YAML payload of "client register".
type registration struct {
	Patient    client.Patient    `yaml:"patient"`
	IntakeForm client.IntakeForm `yaml:"intakeForm"`
}

func clientCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("INTAKE")
	v.AutomaticEnv()
	v.SetDefault("api_url", defaultAPIURL)
	v.SetDefault("timeout", "30s")

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Call a running API server",
	}
	cmd.PersistentFlags().String("api-url", "", "API base URL (env INTAKE_API_URL)")
	cmd.PersistentFlags().Duration("timeout", 0, "Request timeout (env INTAKE_TIMEOUT)")
	_ = v.BindPFlag("api_url", cmd.PersistentFlags().Lookup("api-url"))
	_ = v.BindPFlag("timeout", cmd.PersistentFlags().Lookup("timeout"))

	newClient := func(opts ...client.Option) *client.Client {
		timeout := v.GetDuration("timeout")
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		opts = append(opts, client.WithTimeout(timeout))
		return client.New(v.GetString("api_url"), opts...)
	}

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a patient, submit their intake form and process it",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			var payload registration
			if err := readYAML(file, &payload); err != nil {
				return err
			}
			reg, err := newClient().RegisterWithIntake(cmd.Context(), payload.Patient, payload.IntakeForm)
			if err != nil {
				if reg != nil && reg.Patient != nil {
					_ = printJSON(cmd.OutOrStdout(), reg)
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), reg)
		},
	}
	registerCmd.Flags().StringP("file", "f", "", "YAML file with patient and intakeForm")
	_ = registerCmd.MarkFlagRequired("file")

	bookCmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			var appt client.Appointment
			if err := readYAML(file, &appt); err != nil {
				return err
			}
			a, err := newClient().BookAppointment(cmd.Context(), appt)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a)
		},
	}
	bookCmd.Flags().StringP("file", "f", "", "YAML file with the appointment")
	_ = bookCmd.MarkFlagRequired("file")

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show patients, appointments and intake forms with counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			demo, _ := cmd.Flags().GetBool("demo")
			patientID, _ := cmd.Flags().GetString("patient")
			d, err := newClient(client.WithDemoMode(demo)).Dashboard(cmd.Context(), patientID)
			if err != nil {
				return err
			}
			if d.Demo {
				fmt.Fprintln(cmd.ErrOrStderr(), "WARNING: showing demo data:", d.Warning)
			}
			return printJSON(cmd.OutOrStdout(), d)
		},
	}
	dashboardCmd.Flags().Bool("demo", false, "Show sample data when the API cannot be read")
	dashboardCmd.Flags().String("patient", "", "Limit the dashboard to one patient id")

	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "List providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := newClient().ListProviders(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}

	cmd.AddCommand(registerCmd, bookCmd, dashboardCmd, providersCmd)
	return cmd
}

func readYAML(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open payload: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
