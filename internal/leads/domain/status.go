// Package domain holds the lead, activity and agent model shared by the
// filtering, analytics and reporting packages.
package domain

// Status is a pipeline stage of a lead.
type Status string

const (
	StatusNew                Status = "New"
	StatusContacted          Status = "Contacted"
	StatusNotReachable       Status = "Not Reachable"
	StatusCallBack           Status = "Call Back"
	StatusInterested         Status = "Interested"
	StatusNotInterested      Status = "Not Interested"
	StatusQualified          Status = "Qualified"
	StatusFollowUp           Status = "Follow Up"
	StatusSiteVisitScheduled Status = "Site Visit Scheduled"
	StatusSiteVisitDone      Status = "Site Visit Done"
	StatusMeetingScheduled   Status = "Meeting Scheduled"
	StatusMeetingDone        Status = "Meeting Done"
	StatusProposalSent       Status = "Proposal Sent"
	StatusNegotiation        Status = "Negotiation"
	StatusDocumentation      Status = "Documentation"
	StatusBookingDone        Status = "Booking Done"
	StatusConverted          Status = "Converted"
	StatusLost               Status = "Lost"
	StatusHold               Status = "Hold"
	StatusJunk               Status = "Junk"
)

// Statuses lists every stage in display order. The status funnel always
// reports all of them.
var Statuses = []Status{
	StatusNew,
	StatusContacted,
	StatusNotReachable,
	StatusCallBack,
	StatusInterested,
	StatusNotInterested,
	StatusQualified,
	StatusFollowUp,
	StatusSiteVisitScheduled,
	StatusSiteVisitDone,
	StatusMeetingScheduled,
	StatusMeetingDone,
	StatusProposalSent,
	StatusNegotiation,
	StatusDocumentation,
	StatusBookingDone,
	StatusConverted,
	StatusLost,
	StatusHold,
	StatusJunk,
}

// funnelRank orders the progressive stages. Not Reachable and Call Back sit
// at the Contacted rank; Hold and the drop stages have no rank.
var funnelRank = map[Status]int{
	StatusNew:                1,
	StatusContacted:          2,
	StatusNotReachable:       2,
	StatusCallBack:           2,
	StatusInterested:         3,
	StatusQualified:          4,
	StatusFollowUp:           5,
	StatusSiteVisitScheduled: 6,
	StatusSiteVisitDone:      7,
	StatusMeetingScheduled:   8,
	StatusMeetingDone:        9,
	StatusProposalSent:       10,
	StatusNegotiation:        11,
	StatusDocumentation:      12,
	StatusBookingDone:        13,
	StatusConverted:          14,
}

// Rank returns the funnel rank of s, or 0 for unranked stages.
func (s Status) Rank() int {
	return funnelRank[s]
}

// IsValid reports whether s is one of the enumerated stages.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsDropped reports whether the lead left the pipeline without converting.
func (s Status) IsDropped() bool {
	switch s {
	case StatusLost, StatusNotInterested, StatusJunk:
		return true
	}
	return false
}

// IsActive reports whether a lead in this stage is still being worked.
func (s Status) IsActive() bool {
	return s != StatusConverted && !s.IsDropped()
}

// LeadScore is the qualitative priority of a lead.
type LeadScore string

const (
	ScoreHigh   LeadScore = "High"
	ScoreMedium LeadScore = "Medium"
	ScoreLow    LeadScore = "Low"
)

// LeadScores lists scores in display order.
var LeadScores = []LeadScore{ScoreHigh, ScoreMedium, ScoreLow}

// LeadType separates fresh enquiries from cold outreach.
type LeadType string

const (
	TypeLead     LeadType = "Lead"
	TypeColdLead LeadType = "Cold-Lead"
)

// LeadTypes lists lead types in display order.
var LeadTypes = []LeadType{TypeLead, TypeColdLead}

// PropertyType is the kind of property the lead is interested in.
type PropertyType string

const (
	PropertyResidential PropertyType = "Residential"
	PropertyCommercial  PropertyType = "Commercial"
	PropertyLand        PropertyType = "Land"
)

// PropertyTypes lists property types in display order.
var PropertyTypes = []PropertyType{PropertyResidential, PropertyCommercial, PropertyLand}

// Known lead sources. Source is free text in storage; these are the values
// offered by the filter controls.
const (
	SourceWebsite       = "Website"
	SourceReferral      = "Referral"
	SourceSocialMedia   = "Social Media"
	SourceWalkIn        = "Walk-in"
	SourceAdvertisement = "Advertisement"
	SourceOther         = "Other"
)

// Sources lists the known lead sources.
var Sources = []string{
	SourceWebsite,
	SourceReferral,
	SourceSocialMedia,
	SourceWalkIn,
	SourceAdvertisement,
	SourceOther,
}
