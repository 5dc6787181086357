package main

// General API documentation for swaggo.
//
// @title           faspmgr API
// @version         1.0
// @description     HTTP control surface for FASP transfers driven through their management channel.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
