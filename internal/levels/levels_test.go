package levels_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sesps/spsplot/internal/levels"
)

var _ = Describe("Parse", func() {
	It("parses well-formed lines in input order", func() {
		in := strings.NewReader("0.0 1/2-\n3089.443 20 1/2+\n3684.507 19 3/2-\n")
		result := levels.Parse(in)

		Expect(result.Skipped).To(BeEmpty())
		Expect(result.Levels).To(HaveLen(3))
		Expect(result.Levels[0].Energy).To(Equal(0.0))
		Expect(result.Levels[1].Energy).To(BeNumerically("~", 3.089443, 1e-9))
		Expect(result.Levels[2].Energy).To(BeNumerically("~", 3.684507, 1e-9))
		Expect(result.Levels[1].JPi).To(Equal("1/2+"))
	})

	It("splits uncertainty digits into the energy's last decimal place", func() {
		result := levels.Parse(strings.NewReader("3089.443 20 1/2+\n"))

		Expect(result.Levels).To(HaveLen(1))
		// 20 units of 0.001 keV = 0.020 keV = 2.0e-5 MeV.
		Expect(result.Levels[0].Uncertainty).To(BeNumerically("~", 2.0e-5, 1e-12))
	})

	It("records unknown uncertainty as zero, not as a failure", func() {
		result := levels.Parse(strings.NewReader("6864.0 5/2+\n"))

		Expect(result.Skipped).To(BeEmpty())
		Expect(result.Levels).To(HaveLen(1))
		Expect(result.Levels[0].Uncertainty).To(BeZero())
		Expect(result.Levels[0].JPi).To(Equal("5/2+"))
	})

	It("tolerates approximation markers", func() {
		in := strings.NewReader("~8860 1/2-\n(9498)\n9897? 3/2-\n")
		result := levels.Parse(in)

		Expect(result.Skipped).To(BeEmpty())
		Expect(result.Levels).To(HaveLen(3))
		for _, l := range result.Levels {
			Expect(l.Approximate).To(BeTrue())
		}
		Expect(result.Levels[0].Energy).To(BeNumerically("~", 8.860, 1e-9))
	})

	It("skips malformed lines and keeps counting", func() {
		in := strings.NewReader("0.0 1/2-\nX+1234 3/2-\n3089.443 20 1/2+\nbroken\n-12 5/2+\n")
		result := levels.Parse(in)

		Expect(result.Levels).To(HaveLen(2))
		Expect(result.Skipped).To(HaveLen(3))
		Expect(result.Skipped[0].Line).To(Equal(2))
		Expect(result.Skipped[1].Line).To(Equal(4))
		Expect(result.Summary()).To(Equal("2 levels parsed, 3 lines skipped"))
	})

	It("treats an empty listing as an empty result", func() {
		result := levels.Parse(strings.NewReader(""))

		Expect(result.Levels).To(BeEmpty())
		Expect(result.Skipped).To(BeEmpty())
	})

	It("ignores blank lines and comments", func() {
		in := strings.NewReader("# header\n\n0.0 1/2-\n\n")
		result := levels.Parse(in)

		Expect(result.Levels).To(HaveLen(1))
		Expect(result.Skipped).To(BeEmpty())
	})
})

var _ = Describe("Bundled", func() {
	It("loads the 13C listing with ascending energies", func() {
		result, err := levels.Bundled("13C")
		Expect(err).NotTo(HaveOccurred())
		Expect(len(result.Levels)).To(BeNumerically(">=", 10))

		for i := 1; i < len(result.Levels); i++ {
			Expect(result.Levels[i].Energy).To(BeNumerically(">", result.Levels[i-1].Energy))
		}
	})

	It("fails with ErrUnreadable for an unknown isotope", func() {
		_, err := levels.Bundled("999Xx")
		Expect(err).To(MatchError(levels.ErrUnreadable))
	})

	It("lists the bundled isotopes", func() {
		Expect(levels.BundledIsotopes()).To(ContainElements("13C", "29Si"))
	})
})

var _ = Describe("Load", func() {
	It("fails with ErrUnreadable for a missing file", func() {
		_, err := levels.Load("/nonexistent/levels.txt")
		Expect(err).To(MatchError(levels.ErrUnreadable))
	})
})

var _ = Describe("ParseCache", func() {
	It("reads the isotope CSV cache format", func() {
		in := strings.NewReader("13C,[3.089, 3.685, 3.854]\nbadline\n29Si,[1.273]\n")
		cache := levels.ParseCache(in)

		Expect(cache).To(HaveLen(2))
		Expect(cache["13C"]).To(HaveLen(3))
		Expect(cache["13C"][1].Energy).To(BeNumerically("~", 3.685, 1e-9))
		Expect(cache["29Si"]).To(HaveLen(1))
	})
})
