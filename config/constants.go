package config

const (
	// Leaderboard constants.
	DefaultLeaderboardURL = "https://thegraph.com/_next/data/1S8gjhHRAo46eQdAneE-H/migration-incentive-program/leaderboard.json"

	// Goerli (testnet) constants.
	GoerliNetworkSubgraphURL = "https://gateway.testnet.thegraph.com/network"
	GoerliAddressField       = "indexerGoerliAddress"

	// Mainnet constants.
	MainnetNetworkSubgraphURL = "https://gateway.thegraph.com/network"
	MainnetAddressField       = "indexerMainnetAddress"

	// Score category constants.
	ScoreCeloPhase1      = "celoPhase1Score"
	ScoreGnosisPhase1    = "gnosisPhase1Score"
	ScoreGnosisExtra     = "gnosisExtraScore"
	ScoreArbitrumPhase1  = "arbitrumPhase1Score"
	ScoreAvalanchePhase1 = "avalanchePhase1Score"
	ScoreGnosisPhase2    = "gnosisPhase2Score"

	// Organization whose anycast edge hides the real indexer location.
	CloudflareOrg = "CLOUDFLARENET"
)
