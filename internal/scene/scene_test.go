package scene

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/constraint"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
)

func small(demo string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Demo = demo
	cfg.Cloth.N = 5
	return cfg
}

var _ = Describe("Registry", func() {
	var r *Registry

	BeforeEach(func() {
		r = NewRegistry()
	})

	It("lists the built-in demos", func() {
		Expect(r.List()).To(Equal([]string{"drop", "hang"}))
	})

	It("rejects unknown demos", func() {
		_, err := r.Build(small("flag"))
		Expect(err).To(MatchError(ContainSubstring("unknown demo")))
	})

	It("rejects invalid configs", func() {
		cfg := small("hang")
		cfg.Cloth.N = 4
		_, err := r.Build(cfg)
		Expect(err).To(MatchError(cloth.ErrGridSize))
	})

	It("rejects unknown solvers", func() {
		cfg := small("hang")
		cfg.Solver.Name = "multigrid"
		_, err := r.Build(cfg)
		Expect(err).To(HaveOccurred())
	})

	It("builds every preset", func() {
		for demo := range config.Presets {
			for _, name := range config.ListPresets(demo) {
				cfg := config.GetPreset(demo, name)
				cfg.Cloth.N = 5
				s, err := r.Build(cfg)
				Expect(err).NotTo(HaveOccurred(), "%s/%s", demo, name)
				Expect(s.Name).To(Equal(demo))
			}
		}
	})
})

var _ = Describe("hang demo", func() {
	var s *sim.Simulation

	BeforeEach(func() {
		var err error
		s, err = NewRegistry().Build(small("hang"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("nests the corner pins under the deformation node", func() {
		var kinds []constraint.Kind
		var depths []int
		s.Graph.Walk(func(_ constraint.NodeID, n *constraint.Node, depth int) {
			kinds = append(kinds, n.Kind)
			depths = append(depths, depth)
		})
		Expect(kinds).To(Equal([]constraint.Kind{constraint.KindRoot, constraint.KindDeformation, constraint.KindPointFix}))
		Expect(depths).To(Equal([]int{0, 1, 2}))
		Expect(s.Fix.Pinned(0)).To(BeTrue())
		Expect(s.Fix.Pinned(4)).To(BeTrue())
	})

	It("keeps the corners and lets the interior sag after one cycle", func() {
		before := s.System.Positions()
		Expect(s.Frame()).To(Succeed())

		after := s.System.Positions()
		Expect(after[0]).To(Equal(before[0]))
		Expect(after[4]).To(Equal(before[4]))
		for row := 1; row < 5; row++ {
			for col := 1; col < 4; col++ {
				i := s.System.Index(row, col)
				Expect(after[i].Z()).To(BeNumerically("<", before[i].Z()), "particle %d", i)
			}
		}
	})

	It("drags a particle and lets it go", func() {
		mid := s.System.Index(2, 2)
		x, y, _, ok := s.Camera.Project(s.System.Particles[mid].Pos)
		Expect(ok).To(BeTrue())
		Expect(s.Grabber.GrabPoint(int(x), int(y))).To(BeTrue())

		s.Grabber.MovePoint(cloth.Vec3{0, -0.2, 0.2})
		Expect(s.Frame()).To(Succeed())
		target, _ := s.Fix.Target(mid)
		Expect(s.System.Particles[mid].Pos).To(Equal(target))

		s.Grabber.ReleasePoint()
		Expect(s.Fix.Pinned(mid)).To(BeFalse())
		Expect(s.Fix.Pinned(0)).To(BeTrue())
	})
})

var _ = Describe("hang default preset", func() {
	It("stays attached to its corner pins", func() {
		cfg := config.GetPreset("hang", "default")
		s, err := NewRegistry().Build(cfg)
		Expect(err).NotTo(HaveOccurred())
		limited := limitedSprings(s.System)
		corner := s.System.Particles[0].Pos

		worst := 0.0
		for f := 0; f < 300; f++ {
			Expect(s.Frame()).To(Succeed(), "frame %d", f)
			worst = max(worst, metrics.FrameMaxStrain(s.System, limited))
		}

		Expect(worst).To(BeNumerically("<", 0.5))
		Expect(s.System.Particles[0].Pos).To(Equal(corner))
		spacing := cfg.Cloth.Width / float64(cfg.Cloth.N-1)
		Expect(s.System.Particles[1].Pos.Sub(corner).Len()).To(BeNumerically("<", 1.5*spacing))
	})
})

var _ = Describe("drop demo", func() {
	const eps = 1e-9

	var (
		s      *sim.Simulation
		sphere *constraint.Sphere
	)

	BeforeEach(func() {
		var err error
		s, err = NewRegistry().Build(small("drop"))
		Expect(err).NotTo(HaveOccurred())
		var ok bool
		sphere, ok = Sphere(s)
		Expect(ok).To(BeTrue())
	})

	It("places the sphere below the cloth", func() {
		Expect(sphere.Radius).To(Equal(0.64))
		Expect(sphere.Center).To(Equal(cloth.Vec3{0, 0, -1}))
		Expect(s.Fix.Len()).To(BeZero())
	})

	It("comes to rest on the sphere without penetrating it", func() {
		res, err := s.Run(context.Background(), 300, 1)
		Expect(err).NotTo(HaveOccurred())

		for f, frame := range res.Positions {
			for i, p := range frame {
				Expect(sphere.Distance(p)).To(BeNumerically(">=", -eps), "frame %d particle %d", f, i)
			}
		}

		final := res.Final()
		lowest := 0
		for i := range final {
			if sphere.Distance(final[i]) < sphere.Distance(final[lowest]) {
				lowest = i
			}
		}
		Expect(final[lowest].Sub(sphere.Center).Len()).To(BeNumerically("~", sphere.Radius, 1e-3))
		Expect(res.Metrics["sphere_clearance"]).To(BeNumerically(">=", -eps))
	})
})
