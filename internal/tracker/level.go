package tracker

// MessagesPerLevel is the number of messages required to advance one level.
const MessagesPerLevel = 20

// Level derives a user's level from their message count. Integer division
// truncates toward zero; message counts are never negative.
func Level(u *UserRecord) int64 {
	return u.MessageCount / MessagesPerLevel
}
