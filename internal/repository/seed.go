package repository

import (
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
)

// SeedDemoData loads the demo catalogue used by the portal. Relative timestamps
// are anchored on the store clock.
func SeedDemoData(store *EntityStore) error {
	return store.Update(func(tx *Tx) error {
		now := tx.Now()
		ago := func(d time.Duration) time.Time { return now.Add(-d) }
		day := 24 * time.Hour

		for _, course := range demoCourses() {
			if _, err := tx.AddCourse(course); err != nil {
				return err
			}
		}
		for _, slot := range demoTimeSlots() {
			if _, err := tx.AddTimeSlot(slot); err != nil {
				return err
			}
		}
		for _, room := range demoRooms() {
			if _, err := tx.AddRoom(room); err != nil {
				return err
			}
		}

		// Prepended, so oldest goes in first.
		notifications := []models.Notification{
			{ID: "4", UserID: "2", Title: "Assignment Deadline Extended", Message: "The deadline for CS301 Database Design assignment has been extended to next Friday. Submit your work through the course portal.", Type: models.NotificationSuccess, Read: true, CreatedAt: ago(2 * day)},
			{ID: "3", UserID: "2", Title: "Extra Class: Data Structures and Algorithms", Message: "An additional tutorial session for CS201 has been scheduled for Saturday 10:00 AM - 12:00 PM in CR-103 to cover advanced topics.", Type: models.NotificationInfo, Read: true, CreatedAt: ago(day)},
			{ID: "2", UserID: "2", Title: "Class Cancelled: Operating Systems", Message: "CS302 lecture scheduled for today at 2:00 PM has been cancelled due to professor unavailability. Make-up class will be scheduled soon.", Type: models.NotificationError, CreatedAt: ago(4 * time.Hour)},
			{ID: "1", UserID: "2", Title: "Schedule Change: Database Management Systems", Message: "CS301 lecture on Monday has been moved from 09:00 AM to 10:00 AM in room CR-105. Please update your schedule accordingly.", Type: models.NotificationWarning, CreatedAt: ago(2 * time.Hour)},
		}
		for _, n := range notifications {
			if _, err := tx.AddNotification(n); err != nil {
				return err
			}
		}

		for _, r := range demoTimingRequests(now) {
			if _, err := tx.AddTimingRequest(r); err != nil {
				return err
			}
		}
		for _, p := range demoPolls(now) {
			if _, err := tx.AddPoll(p); err != nil {
				return err
			}
		}
		return nil
	})
}

func demoCourses() []models.Course {
	return []models.Course{
		{ID: "1", Name: "Database Management Systems", Code: "CS301", Professor: "Dr. Priya Singh", ProfessorID: "3", Credits: 4, Department: "Computer Science", Semester: 6, Capacity: 80, Enrolled: 65, Description: "Introduction to database concepts, SQL, and database design principles."},
		{ID: "2", Name: "Data Structures and Algorithms", Code: "CS201", Professor: "Dr. Amit Gupta", ProfessorID: "4", Credits: 4, Department: "Computer Science", Semester: 4, Capacity: 90, Enrolled: 78, Description: "Fundamental data structures and algorithmic techniques for problem solving."},
		{ID: "3", Name: "Operating Systems", Code: "CS302", Professor: "Dr. Rajesh Kumar", ProfessorID: "5", Credits: 3, Department: "Computer Science", Semester: 6, Capacity: 75, Enrolled: 68, Description: "Study of operating system concepts including processes, memory management, and file systems."},
		{ID: "4", Name: "Computer Networks", Code: "CS401", Professor: "Dr. Neha Sharma", ProfessorID: "6", Credits: 3, Department: "Computer Science", Semester: 6, Capacity: 70, Enrolled: 62, Description: "Network protocols, architecture, and distributed systems fundamentals."},
		{ID: "5", Name: "Software Engineering", Code: "CS303", Professor: "Dr. Priya Singh", ProfessorID: "3", Credits: 3, Department: "Computer Science", Semester: 6, Capacity: 60, Enrolled: 52, Description: "Software development lifecycle, project management, and quality assurance."},
		{ID: "6", Name: "Machine Learning", Code: "CS501", Professor: "Dr. Priya Singh", ProfessorID: "3", Credits: 4, Department: "Computer Science", Semester: 8, Capacity: 50, Enrolled: 45, Description: "Introduction to machine learning algorithms, neural networks, and AI applications."},
		{ID: "7", Name: "Web Technologies", Code: "CS304", Professor: "Dr. Priya Singh", ProfessorID: "3", Credits: 3, Department: "Computer Science", Semester: 6, Capacity: 65, Enrolled: 58, Description: "Modern web development technologies including HTML5, CSS3, JavaScript, and frameworks."},
	}
}

func demoTimeSlots() []models.TimeSlot {
	slot := func(id, courseID string, day models.Weekday, start, end, room string, typ models.SlotType) models.TimeSlot {
		return models.TimeSlot{ID: id, CourseID: courseID, Day: day, StartTime: start, EndTime: end, Room: room, Type: typ}
	}
	return []models.TimeSlot{
		slot("1", "1", models.Monday, "09:00", "10:30", "CR-102", models.SlotLecture),
		slot("2", "1", models.Wednesday, "11:00", "12:30", "CR-102", models.SlotLecture),
		slot("3", "1", models.Friday, "14:00", "17:00", "Lab-201", models.SlotLab),
		slot("4", "2", models.Tuesday, "10:00", "11:30", "CR-103", models.SlotLecture),
		slot("5", "2", models.Thursday, "10:00", "11:30", "CR-103", models.SlotLecture),
		slot("6", "3", models.Monday, "14:00", "15:30", "CR-101", models.SlotLecture),
		slot("7", "3", models.Wednesday, "14:00", "15:30", "CR-101", models.SlotLecture),
		slot("8", "4", models.Tuesday, "15:00", "16:30", "CR-104", models.SlotLecture),
		slot("9", "4", models.Friday, "10:00", "11:30", "CR-104", models.SlotLecture),
		slot("10", "5", models.Tuesday, "09:00", "10:30", "CR-105", models.SlotLecture),
		slot("11", "5", models.Thursday, "14:00", "15:30", "CR-105", models.SlotLecture),
		slot("12", "5", models.Saturday, "10:00", "13:00", "Lab-301", models.SlotLab),
		slot("13", "6", models.Monday, "11:00", "12:30", "CR-106", models.SlotLecture),
		slot("14", "6", models.Wednesday, "09:00", "10:30", "CR-106", models.SlotLecture),
		slot("15", "6", models.Friday, "11:00", "14:00", "Lab-302", models.SlotLab),
		slot("16", "7", models.Tuesday, "11:30", "13:00", "CR-107", models.SlotLecture),
		slot("17", "7", models.Thursday, "11:30", "13:00", "CR-107", models.SlotLecture),
		slot("18", "7", models.Saturday, "14:00", "17:00", "Lab-303", models.SlotLab),
	}
}

func demoRooms() []models.Room {
	return []models.Room{
		{ID: "1", Name: "CR-101", Capacity: 100, Type: models.RoomClassroom, Building: "Academic Block A", Floor: 1, Equipment: []string{"Projector", "Whiteboard", "AC"}},
		{ID: "2", Name: "CR-102", Capacity: 80, Type: models.RoomClassroom, Building: "Academic Block A", Floor: 1, Equipment: []string{"Projector", "Whiteboard", "AC"}},
		{ID: "3", Name: "Lab-201", Capacity: 40, Type: models.RoomLab, Building: "Academic Block B", Floor: 2, Equipment: []string{"Computers", "Projector", "AC"}},
		{ID: "4", Name: "CR-105", Capacity: 70, Type: models.RoomClassroom, Building: "Academic Block A", Floor: 1, Equipment: []string{"Projector", "Whiteboard", "AC", "Smart Board"}},
		{ID: "5", Name: "Lab-301", Capacity: 35, Type: models.RoomLab, Building: "Academic Block B", Floor: 3, Equipment: []string{"Computers", "Projector", "AC", "Software Tools"}},
	}
}

func demoTimingRequests(now time.Time) []models.TimingChangeRequest {
	day := 24 * time.Hour
	reviewed := func(d time.Duration) *time.Time {
		t := now.Add(-d)
		return &t
	}
	admin := "admin"
	slots := demoTimeSlots()
	return []models.TimingChangeRequest{
		{
			ID: "1", ProfessorID: "3", CourseID: "1", CurrentSlot: slots[0],
			ProposedSlot: models.SlotFields{Day: models.Monday, StartTime: "10:00", EndTime: "11:30", Room: "CR-105", Type: models.SlotLecture},
			Reason:       "Room CR-102 has technical issues with the projector. CR-105 has better facilities and can accommodate more students comfortably.",
			Status:       models.RequestStatusPending, CreatedAt: now.Add(-6 * time.Hour),
		},
		{
			ID: "2", ProfessorID: "3", CourseID: "5", CurrentSlot: slots[11],
			ProposedSlot: models.SlotFields{Day: models.Friday, StartTime: "15:00", EndTime: "18:00", Room: "Lab-301", Type: models.SlotLab},
			Reason:       "Many students have requested to move the Saturday lab session to Friday evening to avoid weekend classes. This will improve attendance and student satisfaction.",
			Status:       models.RequestStatusApproved, CreatedAt: now.Add(-3 * day), ReviewedAt: reviewed(2 * day), ReviewedBy: &admin,
		},
		{
			ID: "3", ProfessorID: "3", CourseID: "6", CurrentSlot: slots[14],
			ProposedSlot: models.SlotFields{Day: models.Thursday, StartTime: "15:30", EndTime: "18:30", Room: "Lab-302", Type: models.SlotLab},
			Reason:       "Conflict with another course lab session. Moving to Thursday will provide better resource allocation and avoid scheduling conflicts.",
			Status:       models.RequestStatusRejected, CreatedAt: now.Add(-5 * day), ReviewedAt: reviewed(4 * day), ReviewedBy: &admin,
		},
		{
			ID: "4", ProfessorID: "3", CourseID: "7", CurrentSlot: slots[15],
			ProposedSlot: models.SlotFields{Day: models.Tuesday, StartTime: "14:00", EndTime: "15:30", Room: "CR-107", Type: models.SlotLecture},
			Reason:       "Students have lunch break at 12:30-13:30. Moving the class to 2:00 PM will ensure better attendance and student focus.",
			Status:       models.RequestStatusPending, CreatedAt: now.Add(-12 * time.Hour),
		},
		{
			ID: "5", ProfessorID: "3", CourseID: "1", CurrentSlot: slots[2],
			ProposedSlot: models.SlotFields{Day: models.Friday, StartTime: "09:00", EndTime: "12:00", Room: "Lab-201", Type: models.SlotLab},
			Reason:       "Morning sessions are more productive for practical lab work. Students are more alert and focused in the morning hours.",
			Status:       models.RequestStatusApproved, CreatedAt: now.Add(-7 * day), ReviewedAt: reviewed(6 * day), ReviewedBy: &admin,
		},
	}
}

// demoPolls keeps votes equal to the voter count on every option.
func demoPolls(now time.Time) []models.Poll {
	day := 24 * time.Hour
	option := func(id string, d models.Weekday, start, end, room string, voters ...string) models.PollOption {
		return models.PollOption{ID: id, Day: d, StartTime: start, EndTime: end, Room: room, Votes: len(voters), Voters: voters}
	}
	return []models.Poll{
		{
			ID: "1", ProfessorID: "3", CourseID: "1",
			Title:       "Preferred Time for Extra Tutorial Session",
			Description: "I would like to schedule an additional tutorial session for Database Management Systems. Please vote for your preferred time slot.",
			Options: []models.PollOption{
				option("1", models.Saturday, "10:00", "12:00", "CR-102", "student1", "student2", "student3"),
				option("2", models.Sunday, "14:00", "16:00", "CR-102", "student4", "student5"),
				option("3", models.Friday, "16:00", "18:00", "CR-102", "student6", "student7", "student8", "student9"),
			},
			IsActive: true, CreatedAt: now.Add(-day), EndDate: now.Add(3 * day),
		},
		{
			ID: "2", ProfessorID: "3", CourseID: "5",
			Title:       "Software Engineering Project Presentation Schedule",
			Description: "We need to schedule final project presentations for Software Engineering. Please choose your preferred time slot.",
			Options: []models.PollOption{
				option("4", models.Thursday, "14:00", "17:00", "CR-105", "student10", "student11", "student12"),
				option("5", models.Friday, "09:00", "12:00", "CR-105", "student13", "student14", "student15", "student16"),
				option("6", models.Saturday, "10:00", "13:00", "CR-105", "student17", "student18"),
			},
			IsActive: true, CreatedAt: now.Add(-12 * time.Hour), EndDate: now.Add(5 * day),
		},
		{
			ID: "3", ProfessorID: "3", CourseID: "6",
			Title:       "Machine Learning Lab Session Timing",
			Description: "Due to high demand, we are adding an extra ML lab session. Vote for the most convenient time.",
			Options: []models.PollOption{
				option("7", models.Wednesday, "15:00", "18:00", "Lab-302", "student19", "student20", "student21"),
				option("8", models.Saturday, "09:00", "12:00", "Lab-302", "student22", "student23"),
			},
			IsActive: false, CreatedAt: now.Add(-7 * day), EndDate: now.Add(-day),
		},
	}
}
