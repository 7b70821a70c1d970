package services

import "pickem-app/interfaces"

// Interface compliance checks - these fail to compile if a service drifts
// from the contract its handlers depend on
var (
	_ interfaces.GameService        = (*ScheduleService)(nil)
	_ interfaces.OddsService        = (*SpreadService)(nil)
	_ interfaces.PickService        = (*PickService)(nil)
	_ interfaces.LeaderboardService = (*ScoringService)(nil)
	_ interfaces.UserService        = (*UserService)(nil)
	_ interfaces.TokenValidator     = (*AuthService)(nil)
	_ FeedSource                    = (*OddsClient)(nil)
	_ LeaderboardCache              = (*RedisLeaderboardCache)(nil)
)
