package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/taigrr/shakelock/detector"
)

// ANSI escape codes.
const (
	rst     = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	red     = "\033[31m"
	grn     = "\033[32m"
	yel     = "\033[33m"
	cyn     = "\033[36m"
	bred    = "\033[91m"
	bwht    = "\033[97m"
	hideCur = "\033[?25l"
	showCur = "\033[?25h"
	altOn   = "\033[?1049h"
	altOff  = "\033[?1049l"
	clear   = "\033[2J\033[H"

	width  = 64
	blocks = " ▁▂▃▄▅▆▇█"
)

// frame is what the dashboard shows for one redraw.
type frame struct {
	Elapsed time.Duration
	Samples int
	Dropped uint64
	Result  detector.Result
	History []float64
	Events  []detector.Event
}

func render(f frame) string {
	var b strings.Builder
	gw := width - 4

	line := func(content string) {
		pad := max(0, width-visLen(content))
		fmt.Fprintf(&b, "%s│%s%s%s│%s\n", dim, rst, content, strings.Repeat(" ", pad), rst)
	}
	sep := func(label string) {
		if label != "" {
			rest := width - visLen(label) - 1
			fmt.Fprintf(&b, "%s├─%s%s┤%s\n", dim, label, strings.Repeat("─", rest), rst)
		} else {
			fmt.Fprintf(&b, "%s├%s┤%s\n", dim, strings.Repeat("─", width), rst)
		}
	}

	title := " SHAKELOCK "
	fmt.Fprintf(&b, "%s┌─%s%s%s%s%s┐%s\n", dim, rst, bwht, title, rst, dim+strings.Repeat("─", width-len(title)-1), rst)

	secs := f.Elapsed.Seconds()
	rate := 0.0
	if secs >= 1 {
		rate = float64(f.Samples) / secs
	}
	r := f.Result
	line(fmt.Sprintf(" %s%7.1fs%s  %8d smp  %s%.0f%s Hz  drop:%d",
		dim, secs, rst, f.Samples, bwht, rate, rst, f.Dropped))
	line(fmt.Sprintf(" Threshold: %s%.2f g%s %s(position %d)%s",
		bwht, r.Threshold, rst, dim, detector.PositionFromThreshold(r.Threshold), rst))

	sep(" Intensity 5s ")
	if len(f.History) > 0 {
		ceil := max(r.Threshold*1.5, maxAbs(f.History))
		line(fmt.Sprintf("  %s%s%s", grn, sparkline(downsample(f.History, gw), gw, ceil), rst))
		line(fmt.Sprintf("  %s%.2fg%s", dim, ceil, rst))
	} else {
		line(fmt.Sprintf("  %swaiting...%s", dim, rst))
		line("")
	}

	sep(" Shake ")
	line(fmt.Sprintf(" Shake: %s%.2f g%s", bwht, r.Intensity, rst))
	line(" " + gaugeBar(r.Percent, gw-6) + fmt.Sprintf(" %3d%%", r.Percent))
	line(" " + stateLabel(r.Above))

	sep(" Events ")
	start := max(0, len(f.Events)-5)
	for i := len(f.Events) - 1; i >= start; i-- {
		line(" " + formatEvent(f.Events[i]))
	}
	for range max(0, 5-(len(f.Events)-start)) {
		line("")
	}

	sep("")
	line(fmt.Sprintf(" %sctrl+c to quit%s", dim, rst))
	fmt.Fprintf(&b, "%s└%s┘%s\n", dim, strings.Repeat("─", width), rst)
	return b.String()
}

func stateLabel(above bool) string {
	if above {
		return bred + bold + "WILL LOCK" + rst
	}
	return yel + "SHAKE MORE" + rst
}

func formatEvent(ev detector.Event) string {
	col, label := cyn, "pulse"
	if ev.Kind == detector.EventLock {
		col, label = red+bold, "LOCK"
		if ev.Suppressed {
			col, label = dim, "lock (screen off)"
		}
	}
	return fmt.Sprintf("%s%s%s %s%-17s%s %.2fg / %.2fg",
		dim, ev.Time.Format("15:04:05.000"), rst, col, label, rst, ev.Intensity, ev.Threshold)
}

// gaugeBar draws a percentage bar of the given cell width.
func gaugeBar(percent, width int) string {
	filled := max(0, min(width, percent*width/100))
	col := grn
	if percent >= 100 {
		col = bred
	} else if percent >= 70 {
		col = yel
	}
	return col + strings.Repeat("█", filled) + rst + dim + strings.Repeat("░", width-filled) + rst
}

func sparkline(data []float64, width int, ceil float64) string {
	if len(data) == 0 {
		return strings.Repeat(" ", width)
	}
	d := data
	if len(d) < width {
		pad := make([]float64, width-len(d))
		d = append(pad, d...)
	} else if len(d) > width {
		d = d[len(d)-width:]
	}
	if ceil <= 0 {
		ceil = maxAbs(d)
	}
	if ceil <= 0 {
		ceil = 1
	}
	blk := []rune(blocks)
	var b strings.Builder
	for _, v := range d {
		frac := math.Min(1, math.Abs(v)/ceil)
		b.WriteRune(blk[min(8, int(frac*8))])
	}
	return b.String()
}

// downsample keeps the peak of each bucket so short spikes stay visible.
func downsample(data []float64, width int) []float64 {
	n := len(data)
	if n <= width {
		return data
	}
	step := float64(n) / float64(width)
	out := make([]float64, width)
	for c := range width {
		si := int(float64(c) * step)
		ei := int(float64(c+1) * step)
		mx := data[si]
		for j := si + 1; j < ei && j < n; j++ {
			mx = max(mx, data[j])
		}
		out[c] = mx
	}
	return out
}

func maxAbs(data []float64) float64 {
	var mx float64
	for _, v := range data {
		mx = max(mx, math.Abs(v))
	}
	return mx
}

// visLen counts printed runes, skipping ANSI color sequences.
func visLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\033' {
			inEsc = true
			continue
		}
		if inEsc {
			if r == 'm' {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
