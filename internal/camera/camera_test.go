package camera_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mdasim/internal/camera"
	"github.com/san-kum/mdasim/internal/imagegen"
)

func newGenerator() *imagegen.Generator {
	opts := imagegen.DefaultOptions(500)
	opts.Height, opts.Width = 64, 64
	opts.Extent = 1
	opts.Seed = 11
	gen, err := imagegen.New(opts)
	Expect(err).NotTo(HaveOccurred())
	return gen
}

var _ = Describe("Camera", func() {
	var (
		gen *imagegen.Generator
		cam *camera.Camera
	)

	BeforeEach(func() {
		gen = newGenerator()
		var err error
		cam, err = camera.New(gen, camera.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("rejects a missing generator", func() {
			_, err := camera.New(nil, camera.DefaultOptions())
			Expect(err).To(MatchError(camera.ErrNoGenerator))
		})

		It("rejects non-positive timing", func() {
			for _, d := range []time.Duration{0, -time.Second} {
				_, err := camera.New(gen, camera.Options{Timing: d})
				Expect(err).To(MatchError(camera.ErrInvalidTiming))
			}
		})

		It("falls back to the default channel presets", func() {
			c, err := camera.New(gen, camera.Options{Timing: time.Second})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Channels()).To(Equal(camera.DefaultChannels))
			Expect(c.State().Channel).To(Equal("BF"))
		})
	})

	Describe("images", func() {
		It("reports not ready before the first snap", func() {
			_, err := cam.Image()
			Expect(err).To(MatchError(camera.ErrNotReady))
		})

		It("returns the snapped frame for the current state", func() {
			cam.SetXY(imagegen.Point{X: 3, Y: -4})
			cam.SetZ(2)
			Expect(cam.SetChannel("DAPI")).To(Succeed())
			Expect(cam.SetExposure(5)).To(Succeed())

			cam.Snap()
			img, err := cam.Image()
			Expect(err).NotTo(HaveOccurred())

			want := gen.Snap(imagegen.Point{X: 3, Y: -4},
				imagegen.WithChannel(1), imagegen.WithZ(2), imagegen.WithExposure(5))
			Expect(img.Equal(want)).To(BeTrue())
		})

		It("snaps again on LastImage", func() {
			first, err := cam.LastImage()
			Expect(err).NotTo(HaveOccurred())

			cam.Advance(1)
			second, err := cam.LastImage()
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Equal(first)).To(BeFalse())
		})
	})

	Describe("state validation", func() {
		It("rejects non-positive exposure", func() {
			Expect(cam.SetExposure(0)).To(MatchError(camera.ErrInvalidExposure))
			Expect(cam.SetExposure(-1)).To(MatchError(camera.ErrInvalidExposure))
			Expect(cam.State().Exposure).To(Equal(1.0))
		})

		It("rejects unknown channels", func() {
			Expect(cam.SetChannel("Cy5")).To(MatchError(camera.ErrUnknownChannel))
			Expect(cam.State().Channel).To(Equal("BF"))
		})

		It("cycles channels", func() {
			Expect(cam.NextChannel()).To(Equal("DAPI"))
			Expect(cam.NextChannel()).To(Equal("FITC"))
			Expect(cam.State().ChannelIndex).To(Equal(2))
			Expect(cam.NextChannel()).To(Equal("BF"))
			Expect(cam.State().ChannelIndex).To(BeZero())
		})

		It("rejects non-positive timing changes", func() {
			Expect(cam.SetTiming(0)).To(MatchError(camera.ErrInvalidTiming))
			Expect(cam.SetTiming(time.Minute)).To(Succeed())
			Expect(cam.Timing()).To(Equal(time.Minute))
		})
	})

	Describe("timer", func() {
		It("advances the simulation until paused", func() {
			Expect(cam.SetTiming(5 * time.Millisecond)).To(Succeed())

			cam.Start(context.Background())
			cam.Start(context.Background())
			Expect(cam.Running()).To(BeTrue())

			Eventually(cam.Steps).WithTimeout(2 * time.Second).Should(BeNumerically(">=", 3))

			cam.Pause()
			Expect(cam.Running()).To(BeFalse())

			steps := cam.Steps()
			Consistently(cam.Steps).WithDuration(50 * time.Millisecond).Should(Equal(steps))
		})

		It("stops when the context is cancelled", func() {
			Expect(cam.SetTiming(5 * time.Millisecond)).To(Succeed())
			ctx, cancel := context.WithCancel(context.Background())

			cam.Start(ctx)
			Eventually(cam.Steps).WithTimeout(2 * time.Second).Should(BeNumerically(">=", 1))
			cancel()

			Eventually(cam.Running).WithTimeout(time.Second).Should(BeFalse())
			steps := cam.Steps()
			Consistently(cam.Steps).WithDuration(50 * time.Millisecond).Should(Equal(steps))
			cam.Pause()
		})

		It("can be restarted after the context is cancelled", func() {
			Expect(cam.SetTiming(5 * time.Millisecond)).To(Succeed())
			ctx, cancel := context.WithCancel(context.Background())
			cam.Start(ctx)
			cancel()
			Eventually(cam.Running).WithTimeout(time.Second).Should(BeFalse())

			Expect(cam.SetTiming(2 * time.Millisecond)).To(Succeed())
			steps := cam.Steps()
			cam.Start(context.Background())
			Expect(cam.Running()).To(BeTrue())
			Eventually(cam.Steps).WithTimeout(2 * time.Second).Should(BeNumerically(">", steps))

			cam.Pause()
			Expect(cam.Running()).To(BeFalse())
		})
	})
})

var _ = Describe("ChannelTracker", func() {
	It("indexes presets by position", func() {
		t := camera.NewChannelTracker([]string{"BF", "DAPI", "FITC"})
		Expect(t.CurrentIndex()).To(Equal(0))

		idx, err := t.Index("FITC")
		Expect(err).NotTo(HaveOccurred())
		Expect(idx).To(Equal(2))

		Expect(t.Set("DAPI")).To(Succeed())
		Expect(t.Current()).To(Equal("DAPI"))
		Expect(t.CurrentIndex()).To(Equal(1))
	})

	It("keeps the last known preset on a failed set", func() {
		t := camera.NewChannelTracker([]string{"BF", "DAPI"})
		Expect(t.Set("DAPI")).To(Succeed())
		Expect(t.Set("nope")).To(MatchError(camera.ErrUnknownChannel))
		Expect(t.Current()).To(Equal("DAPI"))
	})

	It("handles an empty preset list", func() {
		t := camera.NewChannelTracker(nil)
		Expect(t.Next()).To(Equal(""))
		Expect(t.CurrentIndex()).To(Equal(0))
	})
})
