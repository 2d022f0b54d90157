package model

import (
	"math"

	"github.com/san-kum/blobfield/internal/blob"
	"github.com/san-kum/blobfield/internal/ensemble"
	"github.com/san-kum/blobfield/internal/shape"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func diagonalConfig(mode LabelMode) Config {
	cfg := DefaultConfig()
	cfg.Nx, cfg.Ny = 5, 1
	cfg.Lx, cfg.Ly = 5, 5
	cfg.Dt, cfg.T = 1, 5
	cfg.PeriodicY = true
	cfg.NumBlobs = 1
	cfg.Drain = blob.ConstantDrain(1e10)
	cfg.Labels = mode
	return cfg
}

func seededFactory(p ensemble.Params, seed uint64) ensemble.Factory {
	f, err := ensemble.NewDefaultFactory(p, ensemble.WithSeed(seed))
	Expect(err).NotTo(HaveOccurred())
	return f
}

var _ = Describe("Model", func() {
	Describe("labels", func() {
		DescribeTable("follow a single blob along the diagonal",
			func(mode LabelMode, speedUp bool) {
				m, err := New(diagonalConfig(mode), staticFactory{make: centered})
				Expect(err).NotTo(HaveOccurred())

				r, err := m.MakeRealization(speedUp, 1e-10)
				Expect(err).NotTo(HaveOccurred())
				Expect(r.Labels).NotTo(BeNil())

				for ix := 0; ix < 5; ix++ {
					for it := 0; it < 5; it++ {
						want := 0.0
						if ix == it {
							want = 1
						}
						Expect(r.Labels.At(0, ix, it)).To(Equal(want), "x=%d t=%d", ix, it)
					}
				}
			},
			Entry("individual", LabelsIndividual, false),
			Entry("individual with speed-up", LabelsIndividual, true),
			Entry("same", LabelsSame, false),
			Entry("same with speed-up", LabelsSame, true),
		)

		It("only marks cells with positive density", func() {
			cfg := DefaultConfig()
			cfg.Nx, cfg.Ny = 32, 16
			cfg.Dt, cfg.T = 0.5, 20
			cfg.NumBlobs = 60
			cfg.PeriodicY = true
			cfg.Labels = LabelsIndividual

			p := ensemble.DefaultParams()
			p.WidthX = ensemble.Degenerate(0.8)
			p.WidthY = ensemble.Degenerate(0.8)
			m, err := New(cfg, seededFactory(p, 11))
			Expect(err).NotTo(HaveOccurred())

			r, err := m.MakeRealization(true, 1e-6)
			Expect(err).NotTo(HaveOccurred())

			labeled := 0
			for i, l := range r.Labels.Data {
				if l == 0 {
					continue
				}
				labeled++
				Expect(r.Density.Data[i]).To(BeNumerically(">", 0))
				Expect(l).To(BeNumerically(">=", 1))
				Expect(l).To(BeNumerically("<=", cfg.NumBlobs))
				Expect(l).To(Equal(math.Trunc(l)))
			}
			Expect(labeled).To(BeNumerically(">", 0))
		})

		It("resolves overlaps with the configured policy", func() {
			amps := []float64{2, 1}
			factory := staticFactory{make: func(i int, ly float64) blob.Params {
				p := centered(i, ly)
				p.Amplitude = amps[i]
				return p
			}}

			cfg := diagonalConfig(LabelsIndividual)
			cfg.NumBlobs = 2

			m, err := New(cfg, factory)
			Expect(err).NotTo(HaveOccurred())
			r, err := m.MakeRealization(false, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Labels.At(0, 2, 2)).To(Equal(2.0))

			cfg.LabelPolicy = HighestAmplitude
			m, err = New(cfg, factory)
			Expect(err).NotTo(HaveOccurred())
			r, err = m.MakeRealization(false, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Labels.At(0, 2, 2)).To(Equal(1.0))
		})

		It("is absent when labels are off", func() {
			m, err := New(diagonalConfig(LabelsOff), staticFactory{make: centered})
			Expect(err).NotTo(HaveOccurred())
			r, err := m.MakeRealization(false, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Labels).To(BeNil())
		})
	})

	Describe("realizations", func() {
		It("returns the sampled blobs and tracks state", func() {
			cfg := DefaultConfig()
			cfg.Dt, cfg.T = 1, 1
			cfg.Drain = blob.ConstantDrain(1e10)
			cfg.NumBlobs = 3

			p := ensemble.DefaultParams()
			p.Amplitude = ensemble.Degenerate(1)
			m, err := New(cfg, seededFactory(p, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(m.State()).To(Equal(Idle))
			Expect(m.Blobs()).To(BeEmpty())

			_, err = m.MakeRealization(false, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.State()).To(Equal(Realized))
			Expect(m.Blobs()).To(HaveLen(3))
		})

		It("starts every realization from zeroed fields", func() {
			cfg := diagonalConfig(LabelsSame)
			m, err := New(cfg, staticFactory{make: centered})
			Expect(err).NotTo(HaveOccurred())

			first, err := m.MakeRealization(false, 0)
			Expect(err).NotTo(HaveOccurred())
			second, err := m.MakeRealization(false, 0)
			Expect(err).NotTo(HaveOccurred())

			Expect(second.Density.Data).To(Equal(first.Density.Data))
			Expect(second.Density).NotTo(BeIdenticalTo(first.Density))
		})

		It("gives the same field with several workers", func() {
			cfg := DefaultConfig()
			cfg.Nx, cfg.Ny = 20, 10
			cfg.Dt, cfg.T = 0.5, 20
			cfg.NumBlobs = 200
			cfg.PeriodicY = true
			cfg.Labels = LabelsIndividual

			p := ensemble.DefaultParams()
			p.WidthX = ensemble.Degenerate(0.5)
			p.WidthY = ensemble.Degenerate(0.5)

			sequential, err := New(cfg, seededFactory(p, 5))
			Expect(err).NotTo(HaveOccurred())
			want, err := sequential.MakeRealization(true, 1e-8)
			Expect(err).NotTo(HaveOccurred())

			cfg.Workers = 4
			parallel, err := New(cfg, seededFactory(p, 5))
			Expect(err).NotTo(HaveOccurred())
			got, err := parallel.MakeRealization(true, 1e-8)
			Expect(err).NotTo(HaveOccurred())

			Expect(got.Labels.Data).To(Equal(want.Labels.Data))
			for i := range want.Density.Data {
				Expect(got.Density.Data[i]).To(BeNumerically("~", want.Density.Data[i], 1e-9))
			}
			Expect(got.Samples).To(Equal(want.Samples))
		})

		DescribeTable("runs with a zero velocity component",
			func(vx, vy float64) {
				cfg := DefaultConfig()
				cfg.Nx, cfg.Ny = 10, 10
				cfg.Dt, cfg.T = 5, 10
				cfg.PeriodicY = true
				cfg.NumBlobs = 1
				cfg.Shape = shape.Shape{Prop: shape.Exp, Perp: shape.Exp}
				cfg.Drain = blob.ConstantDrain(1e10)

				factory := staticFactory{make: func(i int, ly float64) blob.Params {
					p := centered(i, ly)
					p.VX, p.VY = vx, vy
					return p
				}}
				m, err := New(cfg, factory)
				Expect(err).NotTo(HaveOccurred())

				r, err := m.MakeRealization(true, 1e-2)
				Expect(err).NotTo(HaveOccurred())
				Expect(r.Density.Data).To(HaveLen(10 * 10 * 2))
			},
			Entry("vy = 0", 1.0, 0.0),
			Entry("vx = 0", 0.0, 1.0),
		)

		It("reports blobs that never reach the domain", func() {
			cfg := diagonalConfig(LabelsOff)
			factory := staticFactory{make: func(i int, ly float64) blob.Params {
				p := centered(i, ly)
				p.PosX = 1000
				return p
			}}
			m, err := New(cfg, factory)
			Expect(err).NotTo(HaveOccurred())

			r, err := m.MakeRealization(true, 1e-4)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Skipped).To(Equal(1))
			Expect(r.Samples).To(BeZero())
			Expect(r.Density.Data).To(HaveEach(0.0))
		})
	})
})
