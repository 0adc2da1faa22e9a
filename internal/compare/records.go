package compare

import "sarifsort/internal/sarif"

var (
	number = Number[int]
	rank   = Number[float64]
)

// MessageValue orders messages by text, markdown, id, arguments, then
// properties.
var MessageValue = Chain(
	By(func(m sarif.Message) *string { return m.Text }, OptionalString),
	By(func(m sarif.Message) *string { return m.Markdown }, OptionalString),
	By(func(m sarif.Message) *string { return m.ID }, OptionalString),
	By(func(m sarif.Message) []string { return m.Arguments }, Strings),
	By(func(m sarif.Message) sarif.PropertyBag { return m.Properties }, PropertyBag),
)

// Message orders optional messages.
var Message = Ptr(MessageValue)

var artifactLocation = Chain(
	By(func(l sarif.ArtifactLocation) *string { return l.URI }, URI),
	By(func(l sarif.ArtifactLocation) *string { return l.URIBaseID }, OptionalString),
	By(func(l sarif.ArtifactLocation) int { return l.Index }, number),
	By(func(l sarif.ArtifactLocation) *sarif.Message { return l.Description }, Message),
	By(func(l sarif.ArtifactLocation) sarif.PropertyBag { return l.Properties }, PropertyBag),
)

// ArtifactLocation orders artifact locations by URI, uriBaseId, index,
// description, then properties. An index of -1 (unset) orders before every
// valid index.
var ArtifactLocation = Ptr(artifactLocation)

var region = Chain(
	By(func(r sarif.Region) int { return r.StartLine }, number),
	By(func(r sarif.Region) int { return r.StartColumn }, number),
	By(func(r sarif.Region) int { return r.EndLine }, number),
	By(func(r sarif.Region) int { return r.EndColumn }, number),
	By(func(r sarif.Region) int { return r.CharOffset }, number),
	By(func(r sarif.Region) int { return r.CharLength }, number),
	By(func(r sarif.Region) int { return r.ByteOffset }, number),
	By(func(r sarif.Region) int { return r.ByteLength }, number),
	By(func(r sarif.Region) *string { return r.SourceLanguage }, OptionalString),
	By(func(r sarif.Region) *sarif.Message { return r.Message }, Message),
	By(func(r sarif.Region) sarif.PropertyBag { return r.Properties }, PropertyBag),
)

// Region orders optional regions by position, then language, message and
// properties.
var Region = Ptr(region)

var physicalLocation = Chain(
	By(func(p sarif.PhysicalLocation) *sarif.ArtifactLocation { return p.ArtifactLocation }, ArtifactLocation),
	By(func(p sarif.PhysicalLocation) *sarif.Region { return p.Region }, Region),
	By(func(p sarif.PhysicalLocation) *sarif.Region { return p.ContextRegion }, Region),
	By(func(p sarif.PhysicalLocation) sarif.PropertyBag { return p.Properties }, PropertyBag),
)

// PhysicalLocation orders optional physical locations.
var PhysicalLocation = Ptr(physicalLocation)

// LogicalLocationValue orders logical locations.
var LogicalLocationValue = Chain(
	By(func(l sarif.LogicalLocation) *string { return l.Name }, OptionalString),
	By(func(l sarif.LogicalLocation) int { return l.Index }, number),
	By(func(l sarif.LogicalLocation) *string { return l.FullyQualifiedName }, OptionalString),
	By(func(l sarif.LogicalLocation) *string { return l.DecoratedName }, OptionalString),
	By(func(l sarif.LogicalLocation) int { return l.ParentIndex }, number),
	By(func(l sarif.LogicalLocation) *string { return l.Kind }, OptionalString),
	By(func(l sarif.LogicalLocation) sarif.PropertyBag { return l.Properties }, PropertyBag),
)

// LogicalLocation orders optional logical locations.
var LogicalLocation = Ptr(LogicalLocationValue)

var logicalLocations = Slice(LogicalLocationValue)

// LocationValue orders result locations by id, physical location, logical
// locations, message, then properties.
var LocationValue = Chain(
	By(func(l sarif.Location) int { return l.ID }, number),
	By(func(l sarif.Location) *sarif.PhysicalLocation { return l.PhysicalLocation }, PhysicalLocation),
	By(func(l sarif.Location) []sarif.LogicalLocation { return l.LogicalLocations }, logicalLocations),
	By(func(l sarif.Location) *sarif.Message { return l.Message }, Message),
	By(func(l sarif.Location) sarif.PropertyBag { return l.Properties }, PropertyBag),
)

// Location orders optional locations.
var Location = Ptr(LocationValue)

var locations = Slice(LocationValue)

var ruleReference = Chain(
	By(func(r sarif.ReportingDescriptorReference) *string { return r.ID }, OptionalString),
	By(func(r sarif.ReportingDescriptorReference) int { return r.Index }, number),
	By(func(r sarif.ReportingDescriptorReference) *string { return r.GUID }, OptionalString),
	By(func(r sarif.ReportingDescriptorReference) sarif.PropertyBag { return r.Properties }, PropertyBag),
)

// RuleReference orders optional rule references.
var RuleReference = Ptr(ruleReference)

// ResultValue orders results. The rule comes first so sorted logs group
// findings by rule, then by message and location.
var ResultValue = Chain(
	By(func(r sarif.Result) *string { return r.RuleID }, OptionalString),
	By(func(r sarif.Result) int { return r.RuleIndex }, number),
	By(func(r sarif.Result) *sarif.ReportingDescriptorReference { return r.Rule }, RuleReference),
	By(func(r sarif.Result) *string { return r.Kind }, OptionalString),
	By(func(r sarif.Result) *string { return r.Level }, OptionalString),
	By(func(r sarif.Result) sarif.Message { return r.Message }, MessageValue),
	By(func(r sarif.Result) *sarif.ArtifactLocation { return r.AnalysisTarget }, ArtifactLocation),
	By(func(r sarif.Result) []sarif.Location { return r.Locations }, locations),
	By(func(r sarif.Result) *string { return r.GUID }, OptionalString),
	By(func(r sarif.Result) *string { return r.CorrelationGUID }, OptionalString),
	By(func(r sarif.Result) int { return r.OccurrenceCount }, number),
	By(func(r sarif.Result) map[string]string { return r.Fingerprints }, StringMap),
	By(func(r sarif.Result) map[string]string { return r.PartialFingerprints }, StringMap),
	By(func(r sarif.Result) *string { return r.BaselineState }, OptionalString),
	By(func(r sarif.Result) float64 { return r.Rank }, rank),
	By(func(r sarif.Result) sarif.PropertyBag { return r.Properties }, PropertyBag),
)

// Result orders optional results.
var Result = Ptr(ResultValue)

// ResultIdentity orders results by what they report and where, ignoring
// members that change from one run to the next (guids, baseline state,
// occurrence counts, rank, fingerprints and properties). Two results that
// compare equal here describe the same finding.
var ResultIdentity = Chain(
	By(func(r sarif.Result) *string { return r.RuleID }, OptionalString),
	By(func(r sarif.Result) sarif.Message { return r.Message }, MessageValue),
	By(func(r sarif.Result) *sarif.ArtifactLocation { return r.AnalysisTarget }, ArtifactLocation),
	By(func(r sarif.Result) []sarif.Location { return r.Locations }, locations),
)

// ResultContent extends ResultIdentity with the members that describe how a
// finding was reported, so an identical finding whose level or metadata
// changed can be told apart from an unchanged one.
var ResultContent = Chain(
	ResultIdentity,
	By(func(r sarif.Result) *string { return r.Kind }, OptionalString),
	By(func(r sarif.Result) *string { return r.Level }, OptionalString),
	By(func(r sarif.Result) float64 { return r.Rank }, rank),
	By(func(r sarif.Result) map[string]string { return r.Fingerprints }, StringMap),
	By(func(r sarif.Result) map[string]string { return r.PartialFingerprints }, StringMap),
	By(func(r sarif.Result) sarif.PropertyBag { return r.Properties }, PropertyBag),
)
