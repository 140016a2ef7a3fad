package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/secretbox"
	"github.com/systmms/secretbox/internal/pagebuf"
)

// checkResult is one row of the doctor report.
type checkResult struct {
	Name   string
	Status string
	Detail string
	Failed bool
}

func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that this host supports pinned, protected secret pages",
		Long: `Verify the OS capabilities secretbox depends on.

This command checks:
- The mlock resource limit (RLIMIT_MEMLOCK)
- Allocating, pinning, and protecting a page-aligned region
- Protection transitions (no-access, read-only, read-write)
- Wipe-on-destroy behavior

A failing check means Box construction on this host would panic.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []checkResult{
				checkMemlockLimit(),
				checkRegionLifecycle(),
				checkProtectionTransitions(),
				checkBoxRoundTrip(),
			}

			printResults(cmd.OutOrStdout(), results)

			for _, r := range results {
				if r.Failed {
					return fmt.Errorf("host cannot satisfy the secretbox protection contract")
				}
			}
			return nil
		},
	}

	return cmd
}

func checkMemlockLimit() checkResult {
	r := checkResult{Name: "mlock limit"}

	soft, hard, supported, err := memlockLimit()
	switch {
	case err != nil:
		r.Status = "error"
		r.Detail = err.Error()
		r.Failed = true
	case !supported:
		r.Status = "skipped"
		r.Detail = "RLIMIT_MEMLOCK not available on this platform"
	case soft == 0:
		r.Status = "error"
		r.Detail = "RLIMIT_MEMLOCK soft limit is 0; mlock will fail"
		r.Failed = true
	default:
		r.Status = "ok"
		r.Detail = fmt.Sprintf("soft=%s hard=%s page=%d", formatLimit(soft), formatLimit(hard), os.Getpagesize())
	}
	return r
}

func checkRegionLifecycle() checkResult {
	r := checkResult{Name: "pin and release"}

	region, err := pagebuf.Alloc(64)
	if err != nil {
		r.Status = "error"
		r.Detail = err.Error()
		r.Failed = true
		return r
	}
	region.Destroy()

	r.Status = "ok"
	r.Detail = "allocated, pinned, wiped, and released a 64 byte region"
	return r
}

func checkProtectionTransitions() (r checkResult) {
	r = checkResult{Name: "protection transitions"}

	region, err := pagebuf.Alloc(64)
	if err != nil {
		r.Status = "error"
		r.Detail = err.Error()
		r.Failed = true
		return r
	}
	defer region.Destroy()

	// Protect panics on mprotect failure; report it instead of crashing
	// a diagnostic command.
	defer func() {
		if rec := recover(); rec != nil {
			r.Status = "error"
			r.Detail = fmt.Sprint(rec)
			r.Failed = true
		}
	}()

	region.Protect(pagebuf.ReadWrite)
	region.Bytes()[0] = 0xFF
	region.Protect(pagebuf.ReadOnly)
	_ = region.Bytes()[0]
	region.Protect(pagebuf.NoAccess)

	region.Wipe()
	if region.Bytes()[0] != 0 {
		r.Status = "error"
		r.Detail = "wipe left non-zero bytes behind"
		r.Failed = true
		return r
	}

	r.Status = "ok"
	r.Detail = "no-access, read-only, and read-write all took effect"
	return r
}

func checkBoxRoundTrip() (r checkResult) {
	r = checkResult{Name: "box round trip"}

	defer func() {
		if rec := recover(); rec != nil {
			r.Status = "error"
			r.Detail = fmt.Sprint(rec)
			r.Failed = true
		}
	}()

	b := secretbox.Init(func(k *[16]byte) {
		k[0] = 0x42
	})
	defer b.Destroy()

	ok := false
	b.With(func(k *[16]byte) {
		ok = k[0] == 0x42
	})
	if !ok {
		r.Status = "error"
		r.Detail = "read guard did not observe the initialized value"
		r.Failed = true
		return r
	}

	r.Status = "ok"
	r.Detail = "construct, mutate, read, and destroy all succeeded"
	return r
}

func printResults(out io.Writer, results []checkResult) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tSTATUS\tDETAIL")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Status, r.Detail)
	}
	w.Flush()
}

func formatLimit(v uint64) string {
	if v == unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", v)
}
