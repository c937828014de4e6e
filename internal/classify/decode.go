package classify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	taggedFenceRe = regexp.MustCompile("(?is)```json\\b(.*?)```")
	anyFenceRe    = regexp.MustCompile("(?s)```(.*?)```")
)

// extractor pulls a candidate JSON payload out of a model reply.
type extractor struct {
	name    string
	extract func(reply string) (string, bool)
}

// extractors are tried in order; the first payload that decodes wins.
var extractors = []extractor{
	{name: "json fence", extract: taggedFence},
	{name: "fence", extract: anyFence},
	{name: "raw reply", extract: rawReply},
}

func taggedFence(reply string) (string, bool) {
	m := taggedFenceRe.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	body := strings.TrimSpace(m[1])
	return body, body != ""
}

func anyFence(reply string) (string, bool) {
	m := anyFenceRe.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	body := strings.TrimSpace(m[1])
	// Skip an info string such as "javascript" on the opening fence line.
	if idx := strings.Index(body, "\n"); idx >= 0 {
		first := strings.TrimSpace(body[:idx])
		if first != "" && len(first) < 20 && !strings.ContainsAny(first, " {[") {
			body = strings.TrimSpace(body[idx+1:])
		}
	}
	return body, body != ""
}

func rawReply(reply string) (string, bool) {
	body := strings.TrimSpace(reply)
	return body, body != ""
}

type payload struct {
	Rank     looseString `json:"rank"`
	Reason   looseString `json:"reason"`
	Features tagList     `json:"features"`
	Phone    looseString `json:"phone"`
}

// looseString takes a JSON string as is and the literal text of a number or
// boolean. Any other value decodes as "" so one odd field never fails the reply.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = looseString(num.String())
		return nil
	}
	var flag bool
	if err := json.Unmarshal(b, &flag); err == nil {
		*s = looseString(strconv.FormatBool(flag))
		return nil
	}
	*s = ""
	return nil
}

// tagList accepts a JSON array or a single comma-separated string. Anything
// else decodes as an empty list.
type tagList []string

func (t *tagList) UnmarshalJSON(b []byte) error {
	var list []looseString
	if err := json.Unmarshal(b, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, v := range list {
			out = append(out, string(v))
		}
		*t = out
		return nil
	}
	var joined string
	if err := json.Unmarshal(b, &joined); err != nil {
		*t = nil
		return nil
	}
	*t = strings.FieldsFunc(joined, func(r rune) bool { return r == ',' || r == '、' })
	return nil
}

// DecodeReply extracts a Verdict from a free-form model reply.
func DecodeReply(reply string) (Verdict, error) {
	lastErr := errors.New("empty reply")
	for _, ex := range extractors {
		body, ok := ex.extract(reply)
		if !ok {
			continue
		}
		v, err := decodePayload(body)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", ex.name, err)
			continue
		}
		return v, nil
	}
	return Verdict{}, lastErr
}

func decodePayload(body string) (Verdict, error) {
	if !strings.HasPrefix(body, "{") {
		return Verdict{}, errors.New("payload is not a JSON object")
	}
	var p payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return Verdict{}, err
	}

	rank, ok := ParseRank(string(p.Rank))
	if !ok {
		rank = RankB
	}
	features := make([]string, 0, len(p.Features))
	for _, f := range p.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	return Verdict{
		Rank:     rank,
		Reason:   strings.TrimSpace(string(p.Reason)),
		Features: features,
		Phone:    strings.TrimSpace(string(p.Phone)),
	}, nil
}
