// Package sarif holds the SARIF 2.1.0 record types that sarifsort orders,
// and the codec that reads and writes them.
//
// Records are built once while decoding and are treated as immutable
// afterwards. Optional members are pointers: a nil pointer means the member
// was absent from the log.
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html
package sarif

const (
	// Version is the only SARIF version sarifsort reads and writes.
	Version = "2.1.0"

	// SchemaURI is written into every log sarifsort emits.
	SchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

	// NoIndex is the SARIF default for every index member.
	NoIndex = -1

	// NoRank is the SARIF default for result.rank.
	NoRank = -1.0
)

// Log is the top-level SARIF document.
type Log struct {
	Schema     string      `json:"$schema,omitempty"`
	Version    string      `json:"version"`
	Runs       []Run       `json:"runs"`
	Properties PropertyBag `json:"properties,omitempty"`
}

// Run is a single invocation of a single analysis tool.
type Run struct {
	Tool               Tool                        `json:"tool"`
	AutomationDetails  *AutomationDetails          `json:"automationDetails,omitempty"`
	OriginalURIBaseIDs map[string]ArtifactLocation `json:"originalUriBaseIds,omitempty"`
	Results            []Result                    `json:"results,omitempty"`
	Properties         PropertyBag                 `json:"properties,omitempty"`
}

// Tool describes the analysis tool that produced a run.
type Tool struct {
	Driver     ToolComponent   `json:"driver"`
	Extensions []ToolComponent `json:"extensions,omitempty"`
}

// ToolComponent is the driver or an extension of a tool.
type ToolComponent struct {
	Name            string      `json:"name"`
	Version         *string     `json:"version,omitempty"`
	SemanticVersion *string     `json:"semanticVersion,omitempty"`
	InformationURI  *string     `json:"informationUri,omitempty"`
	Rules           []Rule      `json:"rules,omitempty"`
	Properties      PropertyBag `json:"properties,omitempty"`
}

// Rule is a reporting descriptor. sarifsort carries rules through untouched.
type Rule struct {
	ID               string      `json:"id"`
	Name             *string     `json:"name,omitempty"`
	ShortDescription *Message    `json:"shortDescription,omitempty"`
	FullDescription  *Message    `json:"fullDescription,omitempty"`
	HelpURI          *string     `json:"helpUri,omitempty"`
	Properties       PropertyBag `json:"properties,omitempty"`
}

// AutomationDetails identifies a run within a series of runs.
type AutomationDetails struct {
	ID         *string     `json:"id,omitempty"`
	GUID       *string     `json:"guid,omitempty"`
	Properties PropertyBag `json:"properties,omitempty"`
}

// ArtifactLocation is a reference to a source artifact.
type ArtifactLocation struct {
	URI         *string     `json:"uri,omitempty"`
	URIBaseID   *string     `json:"uriBaseId,omitempty"`
	Index       int         `json:"index"`
	Description *Message    `json:"description,omitempty"`
	Properties  PropertyBag `json:"properties,omitempty"`
}

// Message is a diagnostic message, either plain text or a reference to a
// message string by ID with positional arguments.
type Message struct {
	Text       *string     `json:"text,omitempty"`
	Markdown   *string     `json:"markdown,omitempty"`
	ID         *string     `json:"id,omitempty"`
	Arguments  []string    `json:"arguments,omitempty"`
	Properties PropertyBag `json:"properties,omitempty"`
}

// Region is a contiguous portion of an artifact.
// Line and column members use 0 for "absent", offsets use -1.
type Region struct {
	StartLine      int         `json:"startLine,omitempty"`
	StartColumn    int         `json:"startColumn,omitempty"`
	EndLine        int         `json:"endLine,omitempty"`
	EndColumn      int         `json:"endColumn,omitempty"`
	CharOffset     int         `json:"charOffset"`
	CharLength     int         `json:"charLength,omitempty"`
	ByteOffset     int         `json:"byteOffset"`
	ByteLength     int         `json:"byteLength,omitempty"`
	SourceLanguage *string     `json:"sourceLanguage,omitempty"`
	Message        *Message    `json:"message,omitempty"`
	Properties     PropertyBag `json:"properties,omitempty"`
}

// PhysicalLocation identifies an artifact and a region within it.
type PhysicalLocation struct {
	ArtifactLocation *ArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *Region           `json:"region,omitempty"`
	ContextRegion    *Region           `json:"contextRegion,omitempty"`
	Properties       PropertyBag       `json:"properties,omitempty"`
}

// LogicalLocation is a programmatic construct such as a function or type.
type LogicalLocation struct {
	Name               *string     `json:"name,omitempty"`
	Index              int         `json:"index"`
	FullyQualifiedName *string     `json:"fullyQualifiedName,omitempty"`
	DecoratedName      *string     `json:"decoratedName,omitempty"`
	ParentIndex        int         `json:"parentIndex"`
	Kind               *string     `json:"kind,omitempty"`
	Properties         PropertyBag `json:"properties,omitempty"`
}

// Location is where a result was detected.
type Location struct {
	ID               int               `json:"id"`
	PhysicalLocation *PhysicalLocation `json:"physicalLocation,omitempty"`
	LogicalLocations []LogicalLocation `json:"logicalLocations,omitempty"`
	Message          *Message          `json:"message,omitempty"`
	Properties       PropertyBag       `json:"properties,omitempty"`
}

// ReportingDescriptorReference points at the rule a result was reported for.
type ReportingDescriptorReference struct {
	ID         *string     `json:"id,omitempty"`
	Index      int         `json:"index"`
	GUID       *string     `json:"guid,omitempty"`
	Properties PropertyBag `json:"properties,omitempty"`
}

// BaselineState values.
const (
	BaselineNew       = "new"
	BaselineUnchanged = "unchanged"
	BaselineUpdated   = "updated"
	BaselineAbsent    = "absent"
)

// Result is a single finding.
type Result struct {
	RuleID              *string                       `json:"ruleId,omitempty"`
	RuleIndex           int                           `json:"ruleIndex"`
	Rule                *ReportingDescriptorReference `json:"rule,omitempty"`
	Kind                *string                       `json:"kind,omitempty"`
	Level               *string                       `json:"level,omitempty"`
	Message             Message                       `json:"message"`
	AnalysisTarget      *ArtifactLocation             `json:"analysisTarget,omitempty"`
	Locations           []Location                    `json:"locations,omitempty"`
	GUID                *string                       `json:"guid,omitempty"`
	CorrelationGUID     *string                       `json:"correlationGuid,omitempty"`
	OccurrenceCount     int                           `json:"occurrenceCount,omitempty"`
	Fingerprints        map[string]string             `json:"fingerprints,omitempty"`
	PartialFingerprints map[string]string             `json:"partialFingerprints,omitempty"`
	BaselineState       *string                       `json:"baselineState,omitempty"`
	Rank                float64                       `json:"rank"`
	Properties          PropertyBag                   `json:"properties,omitempty"`
}

// String returns a pointer to s. It is a convenience for building records
// with optional string members.
func String(s string) *string {
	return &s
}

// NewArtifactLocation returns an ArtifactLocation with SARIF defaults.
func NewArtifactLocation() ArtifactLocation {
	return ArtifactLocation{Index: NoIndex}
}

// NewRegion returns a Region with SARIF defaults.
func NewRegion() Region {
	return Region{CharOffset: NoIndex, ByteOffset: NoIndex}
}

// NewLogicalLocation returns a LogicalLocation with SARIF defaults.
func NewLogicalLocation() LogicalLocation {
	return LogicalLocation{Index: NoIndex, ParentIndex: NoIndex}
}

// NewLocation returns a Location with SARIF defaults.
func NewLocation() Location {
	return Location{ID: NoIndex}
}

// NewRuleReference returns a ReportingDescriptorReference with SARIF defaults.
func NewRuleReference() ReportingDescriptorReference {
	return ReportingDescriptorReference{Index: NoIndex}
}

// NewResult returns a Result with SARIF defaults.
func NewResult() Result {
	return Result{RuleIndex: NoIndex, Rank: NoRank}
}

// IsEmpty reports whether the region carries no position at all.
// Some producers emit line 0, column 0 for findings that are not tied to a
// region; such regions are equivalent to an absent one.
func (r *Region) IsEmpty() bool {
	return r.StartLine == 0 && r.StartColumn == 0 &&
		r.EndLine == 0 && r.EndColumn == 0 &&
		r.CharOffset < 0 && r.ByteOffset < 0
}

// DriverName returns the name of the tool that produced the run.
func (r *Run) DriverName() string {
	return r.Tool.Driver.Name
}
