package cloth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/topology"
)

var _ = Describe("Body", func() {
	var (
		grid *topology.Grid
		body *cloth.Body
	)

	build := func(integ string, policy topology.PinPolicy, prm cloth.Params) {
		var err error
		grid, err = topology.Generate(topology.Options{
			Rows: 6, Cols: 8, Spacing: 0.5, Height: 5, Shear: true, Bend: true,
		})
		Expect(err).NotTo(HaveOccurred())

		in, err := integrators.New(integ)
		Expect(err).NotTo(HaveOccurred())

		body, err = cloth.New(grid, grid.Pinned(policy), prm, in)
		Expect(err).NotTo(HaveOccurred())
	}

	for _, name := range integrators.Names() {
		Context("with the "+name+" integrator", func() {
			BeforeEach(func() {
				build(name, topology.PinEdgeColumns, cloth.DefaultParams())
			})

			It("starts at the generated rest pose", func() {
				Expect(body.Positions()).To(Equal(grid.Positions))
				Expect(body.Frame().Step).To(Equal(0))
			})

			It("sags under gravity while the edge columns hold", func() {
				for i := 0; i < 120; i++ {
					Expect(body.Step(1.0 / 60)).To(Succeed())
				}

				pos := body.Positions()
				mid := grid.Index(3, 4)
				Expect(pos[mid].Y).To(BeNumerically("<", grid.Positions[mid].Y))

				for _, p := range body.Points() {
					if p.Pinned {
						Expect(pos[p.Index]).To(Equal(grid.Positions[p.Index]))
					}
				}
			})

			It("advances the clock by the requested time", func() {
				for i := 0; i < 30; i++ {
					Expect(body.Step(0.01)).To(Succeed())
				}
				f := body.Frame()
				Expect(f.Step).To(Equal(30))
				Expect(f.Time).To(BeNumerically("~", 0.3, 1e-12))
				Expect(f.IsValid()).To(BeTrue())
			})

			It("ignores a zero time step", func() {
				Expect(body.Step(0.02)).To(Succeed())
				before := body.Frame()
				Expect(body.Step(0)).To(Succeed())
				Expect(body.Frame()).To(Equal(before))
			})

			It("rejects a negative time step", func() {
				Expect(body.Step(-1)).To(MatchError(dynamo.ErrInvalidStep))
			})
		})
	}

	Context("with wind and no gravity", func() {
		BeforeEach(func() {
			prm := cloth.DefaultParams()
			prm.Gravity = dynamo.Zero3
			prm.Wind = dynamo.V3(0, 0, -0.05)
			build("verlet", topology.PinTopRow, prm)
		})

		It("stretches downwind without leaving its plane", func() {
			for i := 0; i < 60; i++ {
				Expect(body.Step(1.0 / 60)).To(Succeed())
			}
			bottom := grid.Index(grid.Rows-1, grid.Cols/2)
			Expect(body.Positions()[bottom].Z).To(BeNumerically("<", grid.Positions[bottom].Z))
			Expect(body.Positions()[bottom].Y).To(BeNumerically("~", grid.Positions[bottom].Y, 1e-9))
		})
	})

	Context("with substeps", func() {
		It("matches the same number of single steps of the smaller size", func() {
			prm := cloth.DefaultParams()
			prm.Substeps = 3
			build("euler", topology.PinTopRow, prm)
			coarse := body

			build("euler", topology.PinTopRow, cloth.DefaultParams())
			fine := body

			for i := 0; i < 20; i++ {
				Expect(coarse.Step(0.03)).To(Succeed())
				for k := 0; k < 3; k++ {
					Expect(fine.Step(0.01)).To(Succeed())
				}
			}

			cp, fp := coarse.Positions(), fine.Positions()
			for i := range cp {
				Expect(cp[i].ApproxEqual(fp[i], 1e-9)).To(BeTrue(), "point %d", i)
			}
		})
	})
})
