package orm

import "regexp"

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
