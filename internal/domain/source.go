package domain

import "strings"

type SourceID string

const (
	SourceGreenhouse      SourceID = "greenhouse"
	SourceLever           SourceID = "lever"
	SourceSmartRecruiters SourceID = "smartrecruiters"
	SourceWorkday         SourceID = "workday"
	SourceAdzuna          SourceID = "adzuna"
	SourceRemotive        SourceID = "remotive"
	SourceRemoteOK        SourceID = "remoteok"
	SourceJobicy          SourceID = "jobicy"
)

// AllSources is the fixed priority order. Final posting order follows it,
// never adapter completion order.
var AllSources = []SourceID{
	SourceGreenhouse,
	SourceLever,
	SourceSmartRecruiters,
	SourceWorkday,
	SourceAdzuna,
	SourceRemotive,
	SourceRemoteOK,
	SourceJobicy,
}

var sourceNames = map[SourceID]string{
	SourceGreenhouse:      "Greenhouse",
	SourceLever:           "Lever",
	SourceSmartRecruiters: "SmartRecruiters",
	SourceWorkday:         "Workday",
	SourceAdzuna:          "Adzuna",
	SourceRemotive:        "Remotive",
	SourceRemoteOK:        "Remote OK",
	SourceJobicy:          "Jobicy",
}

func (s SourceID) DisplayName() string {
	if n, ok := sourceNames[s]; ok {
		return n
	}
	return string(s)
}

// Priority returns the index of s in AllSources, or len(AllSources) when unknown.
func (s SourceID) Priority() int {
	for i, x := range AllSources {
		if x == s {
			return i
		}
	}
	return len(AllSources)
}

func ParseSourceID(raw string) (SourceID, bool) {
	k := strings.ToLower(strings.TrimSpace(raw))
	k = strings.ReplaceAll(k, "-", "")
	k = strings.ReplaceAll(k, "_", "")
	k = strings.ReplaceAll(k, " ", "")
	for _, s := range AllSources {
		if string(s) == k {
			return s, true
		}
	}
	return "", false
}
