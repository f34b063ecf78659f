package internal

import (
	"fmt"
	"log"
	"strconv"

	"files-bot/config"
	"files-bot/db"
)

// promoteUser makes the registered user with the ID in args an admin. The
// username is also added to the config admins and saved to configPath, since
// the config is what admin statuses are synced from at startup.
func promoteUser(database *db.DB, cfg *config.Config, configPath string, callerID int64, args string) string {
	caller, err := database.GetUser(callerID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		return "Error checking access rights."
	}
	if caller == nil || !caller.IsAdmin {
		return "Only admins can promote users."
	}

	userID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return "Please specify the user ID. For example: /promote 12345"
	}

	user, err := database.GetUser(userID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		return "Error getting the user."
	}
	if user == nil {
		return "User not found."
	}
	if user.Username == "" {
		return "The user has no username and cannot be added to the admin list."
	}

	if err := database.SetUserAdmin(userID, true); err != nil {
		log.Printf("Error setting admin: %v", err)
		return "Error updating the user."
	}

	cfg.SetAdmin(user.Username, true)
	if configPath != "" {
		if err := config.SaveConfig(cfg, configPath); err != nil {
			log.Printf("Error saving config: %v", err)
			return fmt.Sprintf("%s is now an admin, but the config could not be saved.", user.Username)
		}
	}

	return fmt.Sprintf("%s is now an admin.", user.Username)
}
