package pdfx

// Progress splits the 0-100 range into a load band (0-30, proportional to
// bytes consumed) and an extraction band (30-100, apportioned per completed
// page). Reported values never decrease; they are advisory UI feedback and
// nothing may rely on them for correctness.
type Progress struct {
	report func(int)
	last   int
}

func NewProgress(report func(int)) *Progress {
	if report == nil {
		report = func(int) {}
	}
	return &Progress{report: report, last: -1}
}

const loadBand = 30

func (p *Progress) Loaded(loaded, total int64) {
	if total <= 0 {
		return
	}
	if loaded > total {
		loaded = total
	}
	p.emit(int(int64(loadBand) * loaded / total))
}

func (p *Progress) LoadDone() {
	p.emit(loadBand)
}

func (p *Progress) PageDone(page, pageCount int) {
	if pageCount <= 0 {
		return
	}
	p.emit(loadBand + (100-loadBand)*page/pageCount)
}

func (p *Progress) Done() {
	p.emit(100)
}

func (p *Progress) emit(v int) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	if v <= p.last {
		return
	}
	p.last = v
	p.report(v)
}
