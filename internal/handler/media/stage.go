package media

// Stage names a step of the clip pipeline. Stages run in declaration order.
type Stage int

const (
	StageLoadConfig Stage = iota
	StageResolveIdentifier
	StageAuthenticate
	StageFetchMetadata
	StageDeriveDownloadURL
	StageComputeEffectiveDuration
	StageConvert
	StageNotify
	StageDone
)

var stageNames = [...]string{
	StageLoadConfig:               "load config",
	StageResolveIdentifier:        "resolve identifier",
	StageAuthenticate:             "authenticate",
	StageFetchMetadata:            "fetch metadata",
	StageDeriveDownloadURL:        "derive download url",
	StageComputeEffectiveDuration: "compute effective duration",
	StageConvert:                  "convert",
	StageNotify:                   "notify",
	StageDone:                     "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}

	return stageNames[s]
}
