package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fromage/internal/convert"
)

func convertCmd(defaults *conversionFlags) *cobra.Command {
	flags := *defaults
	var input, output string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert one file between ATools and CSV",
		Example: `  fromage convert -i strings.txt -o strings.csv
  fromage convert -i strings.csv --if csv -o strings.txt --of atools -t FRENCH`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(input)
			if err != nil {
				return err
			}
			return runConvert(input, output, opts)
		},
	}

	flags.registerCSV(cmd)
	flags.registerInput(cmd)
	flags.registerOutput(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "out.txt", "Output file")
	cmd.MarkFlagRequired("input")

	return cmd
}

func runConvert(input, output string, opts convert.Options) error {
	res, err := convert.File(input, output, opts)
	if err != nil {
		return fmt.Errorf("convert %s: %w", input, err)
	}
	if res.Skipped > 0 {
		log.Warn().Int("skipped", res.Skipped).Str("input", input).Msg("Some lines were skipped")
	}
	return nil
}
