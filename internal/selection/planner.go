package selection

import (
	"math"
	"sort"
	"time"

	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/mood"
)

type band int

const (
	bandWeak band = iota
	bandMid
	bandStrong
)

func (b band) reason() Reason {
	switch b {
	case bandWeak:
		return ReasonWeakArea
	case bandMid:
		return ReasonReinforcement
	default:
		return ReasonConfidenceBuilder
	}
}

type kind int

const (
	kindReview kind = iota
	kindNew
	kindApplication
	kindCount
)

func kindOf(c models.QuestionCandidate) kind {
	switch {
	case c.Attempted():
		return kindReview
	case c.Difficulty.Rank() >= models.DifficultyApplication.Rank():
		return kindApplication
	default:
		return kindNew
	}
}

type topicQueue struct {
	key       string
	mastery   float64
	band      band
	questions []models.QuestionCandidate
}

// take removes and returns the first question of kind k, or any question when
// k is negative.
func (t *topicQueue) take(k kind) (models.QuestionCandidate, bool) {
	for i, q := range t.questions {
		if k < 0 || kindOf(q) == k {
			t.questions = append(t.questions[:i], t.questions[i+1:]...)
			return q, true
		}
	}
	return models.QuestionCandidate{}, false
}

type pool struct {
	topics []*topicQueue
	cursor int
}

func (p *pool) size() int {
	n := 0
	for _, t := range p.topics {
		n += len(t.questions)
	}
	return n
}

func (p *pool) has(k kind) bool {
	for _, t := range p.topics {
		for _, q := range t.questions {
			if kindOf(q) == k {
				return true
			}
		}
	}
	return false
}

// next walks the topics round-robin from the cursor and takes the first
// question of kind k.
func (p *pool) next(k kind) (*topicQueue, models.QuestionCandidate, bool) {
	n := len(p.topics)
	for step := 0; step < n; step++ {
		i := (p.cursor + step) % n
		if q, ok := p.topics[i].take(k); ok {
			p.cursor = (i + 1) % n
			return p.topics[i], q, true
		}
	}
	return nil, models.QuestionCandidate{}, false
}

// composer tracks the mood mix across the whole session.
type composer struct {
	target [kindCount]int
	picked [kindCount]int
	active bool
}

func newComposer(s mood.Setting, n int) *composer {
	c := &composer{}
	if s.ReviewPct+s.NewLearningPct+s.ApplicationPct == 0 {
		return c
	}
	c.active = true
	shares := apportion(n, []int{s.ReviewPct, s.NewLearningPct, s.ApplicationPct})
	copy(c.target[:], shares)
	return c
}

// Unattempted kinds win ties over review.
var kindPreference = [kindCount]kind{kindNew, kindApplication, kindReview}

// choose returns the available kind with the largest remaining deficit, or -1
// when no mix applies. Once no available kind is short of its target, the
// first available kind in kindPreference is taken.
func (c *composer) choose(p *pool) kind {
	if !c.active {
		return -1
	}
	best := kind(-1)
	first := kind(-1)
	for _, k := range kindPreference {
		if !p.has(k) {
			continue
		}
		if first < 0 {
			first = k
		}
		if best < 0 || c.target[k]-c.picked[k] > c.target[best]-c.picked[best] {
			best = k
		}
	}
	if best >= 0 && c.target[best]-c.picked[best] <= 0 {
		return first
	}
	return best
}

func (c *composer) record(q models.QuestionCandidate) {
	c.picked[kindOf(q)]++
}

// Plan ranks candidates for req from the user's progress. It is deterministic
// for a given input and never returns more than req.SessionLength items.
func Plan(policy Policy, req RankRequest, progress []models.ProgressRecord, candidates []models.QuestionCandidate) []Ranked {
	n := req.SessionLength
	if len(candidates) < n {
		n = len(candidates)
	}
	if n <= 0 {
		return []Ranked{}
	}

	masteryOf := make(map[string]float64, len(progress))
	for _, p := range progress {
		masteryOf[p.TopicKey] = p.Mastery
	}

	byTopic := make(map[string]*topicQueue)
	for _, c := range candidates {
		t, ok := byTopic[c.TopicKey]
		if !ok {
			m := masteryOf[c.TopicKey]
			t = &topicQueue{key: c.TopicKey, mastery: m, band: policy.bandOf(m)}
			byTopic[c.TopicKey] = t
		}
		t.questions = append(t.questions, c)
	}

	topics := make([]*topicQueue, 0, len(byTopic))
	for _, t := range byTopic {
		orderQuestions(t.questions, req.Mood.IncludeChallenge)
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].mastery != topics[j].mastery {
			return topics[i].mastery < topics[j].mastery
		}
		return topics[i].key < topics[j].key
	})

	var pools []*pool
	var quotas []int
	if req.FocusWeakAreas {
		pools = []*pool{{}, {}, {}}
		for _, t := range topics {
			pools[t.band].topics = append(pools[t.band].topics, t)
		}
		quotas = apportion(n, []int{policy.WeakShare, policy.MidShare, policy.StrongShare})
	} else {
		pools = []*pool{{topics: topics}}
		quotas = []int{n}
	}

	comp := newComposer(req.Mood, n)
	out := make([]Ranked, 0, n)
	pick := func(p *pool, limit int) int {
		taken := 0
		for taken < limit && p.size() > 0 {
			t, q, ok := p.next(comp.choose(p))
			if !ok {
				break
			}
			comp.record(q)
			out = append(out, Ranked{
				QuestionID:    q.QuestionID,
				Reason:        t.band.reason(),
				PriorityScore: policy.priority(t.mastery, q),
			})
			taken++
		}
		return taken
	}

	spill := 0
	for i, p := range pools {
		spill += quotas[i] - pick(p, quotas[i])
	}
	for _, p := range pools {
		if spill == 0 {
			break
		}
		spill -= pick(p, spill)
	}
	return out
}

func (p Policy) bandOf(m float64) band {
	switch {
	case m < p.WeakBelow:
		return bandWeak
	case m >= p.StrongAtLeast:
		return bandStrong
	default:
		return bandMid
	}
}

func (p Policy) priority(m float64, q models.QuestionCandidate) float64 {
	score := 1 - m
	if !q.Attempted() {
		score += p.UnattemptedBonus
	}
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*10000) / 10000
}

// orderQuestions puts unattempted questions first, then the least recently
// attempted. Without challenge, advanced questions trail their group.
func orderQuestions(qs []models.QuestionCandidate, challenge bool) {
	sort.SliceStable(qs, func(i, j int) bool {
		a, b := qs[i], qs[j]
		if a.Attempted() != b.Attempted() {
			return !a.Attempted()
		}
		if !challenge {
			aa := a.Difficulty == models.DifficultyAdvanced
			ba := b.Difficulty == models.DifficultyAdvanced
			if aa != ba {
				return !aa
			}
		}
		if a.Attempted() {
			at, bt := lastAttempt(a), lastAttempt(b)
			if !at.Equal(bt) {
				return at.Before(bt)
			}
		}
		return a.QuestionID < b.QuestionID
	})
}

func lastAttempt(q models.QuestionCandidate) time.Time {
	if q.LastAttemptedAt == nil {
		return time.Time{}
	}
	return *q.LastAttemptedAt
}
